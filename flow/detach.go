package flow

import (
	"context"
	"fmt"
	"os"

	"github.com/dshills/mailflow-go/flow/emit"
)

// detach runs fn on an independent goroutine with a context that survives
// the caller's cancellation. Detached operations share the same run
// functions as synchronous ones; detachment is purely a response-timing
// decision. Errors inside fn are only observable through the event
// emitter and the instance store. Detached tasks are not cancellable once
// started.
func (e *Engine) detach(ctx context.Context, trigger string, fn func(ctx context.Context)) {
	e.metrics.RecordDetached(trigger)

	bg := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintf(os.Stderr, "flow: detached %s operation panicked: %v\n", trigger, r)
				e.event(emit.LevelError, emit.TypeFailure, "detached operation panicked", Instance{}, "", map[string]interface{}{
					"trigger": trigger,
					"error":   fmt.Sprint(r),
				})
			}
		}()
		fn(bg)
	}()
}
