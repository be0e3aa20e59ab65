package flow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/dshills/mailflow-go/flow/artifact"
	"github.com/dshills/mailflow-go/flow/client"
	"github.com/dshills/mailflow-go/flow/emit"
	"github.com/dshills/mailflow-go/flow/store"
)

// Clients bundles the three collaborator adapters the engine drives.
type Clients struct {
	Drafting client.Drafting
	Review   client.Review
	Delivery client.Delivery
}

// Options holds optional engine dependencies.
type Options struct {
	// Metrics records transition and latency metrics. Nil disables
	// metric collection.
	Metrics *Metrics

	// Compose resolves stored per-user compose defaults. Nil means
	// every send request must supply its own subject and recipients.
	Compose ComposeSource

	// Now supplies timestamps. Nil selects time.Now. Injected by tests.
	Now func() time.Time
}

// Engine is the workflow state machine. It is the only writer of
// Instance records and is safe for concurrent use; per-instance ordering
// is enforced by the store's keyed read-modify-write.
type Engine struct {
	store     store.Store[Instance]
	artifacts artifact.Store
	clients   Clients
	emitter   emit.Emitter
	metrics   *Metrics
	compose   ComposeSource
	now       func() time.Time
}

// New creates a workflow engine.
//
// The emitter is wrapped so that emission failures are logged to stderr
// and never abort an operation; a nil emitter discards events.
func New(st store.Store[Instance], artifacts artifact.Store, clients Clients, emitter emit.Emitter, opts Options) (*Engine, error) {
	if st == nil {
		return nil, errors.New("instance store is required")
	}
	if artifacts == nil {
		return nil, errors.New("artifact store is required")
	}
	if clients.Drafting == nil || clients.Review == nil || clients.Delivery == nil {
		return nil, errors.New("drafting, review and delivery clients are all required")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		store:     st,
		artifacts: artifacts,
		clients:   clients,
		emitter:   emit.Safe(emitter, os.Stderr),
		metrics:   opts.Metrics,
		compose:   opts.Compose,
		now:       now,
	}, nil
}

// SendRequest starts (or re-activates) a workflow instance.
type SendRequest struct {
	// InstanceID is optional; absent or invalid ids are replaced with a
	// generated one.
	InstanceID string

	// Username is required and becomes the instance owner on first
	// activation.
	Username string

	// Instructions is the drafting instruction text. Required.
	Instructions string

	// Overrides are request-level compose values, merged field by field
	// over the stored defaults.
	Overrides ComposeConfig

	// Detached acknowledges the caller immediately and continues in the
	// background.
	Detached bool

	// TraceID correlates events across the operation. Generated when
	// absent.
	TraceID string
}

// ReviewCallbackRequest carries a human review decision back to the engine.
type ReviewCallbackRequest struct {
	// InstanceID must reference a known instance.
	InstanceID string

	// Outcome is one of "approve", "reject" or "modify",
	// case-insensitive. Anything else is rejected without touching the
	// instance.
	Outcome string

	// Note is the optional free-text note or revision guidance.
	Note string

	Detached bool
	TraceID  string
}

// AbortRequest terminates an instance without delivery.
type AbortRequest struct {
	InstanceID string
	Username   string
	TraceID    string
}

// Result is returned by every trigger operation.
type Result struct {
	// Instance is the committed record after the operation. For
	// detached operations only the ID is populated at acknowledgment
	// time.
	Instance Instance

	// TraceID identifies the operation's event stream.
	TraceID string

	// Detached reports whether the operation continues in the
	// background.
	Detached bool
}

// Send handles a new send request: activate the instance, draft, submit
// for review, and park in wait (or abort on failure).
//
// Validation runs synchronously in both modes; a detached caller is only
// acknowledged after the request is known to be well-formed.
func (e *Engine) Send(ctx context.Context, req SendRequest) (Result, error) {
	done := e.metrics.OperationStarted()
	defer done()

	if strings.TrimSpace(req.Username) == "" {
		return Result{}, validationError(CodeMissingUsername, "username is required")
	}
	if strings.TrimSpace(req.Instructions) == "" {
		return Result{}, validationError(CodeMissingInstructions, "instructions are required")
	}

	id := normalizeInstanceID(req.InstanceID)
	traceID := orGenerated(req.TraceID)

	defaults, err := e.composeFor(ctx, req.Username)
	if err != nil {
		return Result{}, asEngineError(err)
	}
	merged := defaults.Merge(req.Overrides)
	if err := merged.Validate(); err != nil {
		return Result{}, err
	}

	if req.Detached {
		e.detach(ctx, "send", func(bg context.Context) {
			_, _ = e.runSend(bg, id, req.Username, req.Instructions, merged, traceID)
		})
		return Result{Instance: Instance{ID: id}, TraceID: traceID, Detached: true}, nil
	}

	inst, err := e.runSend(ctx, id, req.Username, req.Instructions, merged, traceID)
	return Result{Instance: inst, TraceID: traceID}, err
}

// ReviewCallback handles an approve, reject or modify decision for an
// instance awaiting review.
func (e *Engine) ReviewCallback(ctx context.Context, req ReviewCallbackRequest) (Result, error) {
	done := e.metrics.OperationStarted()
	defer done()

	id := strings.TrimSpace(req.InstanceID)
	if id == "" {
		return Result{}, validationError(CodeMissingInstanceID, "instance id is required")
	}

	outcome := strings.ToLower(strings.TrimSpace(req.Outcome))
	switch outcome {
	case "approve", "reject", "modify":
	default:
		return Result{}, validationError(CodeUnknownOutcome,
			fmt.Sprintf("unrecognized review outcome %q", req.Outcome))
	}

	if _, err := e.store.Get(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, notFoundError(id)
		}
		return Result{}, asEngineError(err)
	}

	traceID := orGenerated(req.TraceID)

	run := func(bg context.Context) (Instance, error) {
		switch outcome {
		case "approve":
			return e.runApprove(bg, id, traceID)
		case "reject":
			return e.runReject(bg, id, req.Note, traceID)
		default:
			return e.runModify(bg, id, req.Note, traceID)
		}
	}

	if req.Detached {
		e.detach(ctx, outcome, func(bg context.Context) {
			_, _ = run(bg)
		})
		return Result{Instance: Instance{ID: id}, TraceID: traceID, Detached: true}, nil
	}

	inst, err := run(ctx)
	return Result{Instance: inst, TraceID: traceID}, err
}

// Abort terminates a non-terminal instance. Aborting an already aborted
// instance is a no-op; aborting a finished instance is rejected.
func (e *Engine) Abort(ctx context.Context, req AbortRequest) (Result, error) {
	done := e.metrics.OperationStarted()
	defer done()

	id := strings.TrimSpace(req.InstanceID)
	if id == "" {
		return Result{}, validationError(CodeMissingInstanceID, "instance id is required")
	}
	if strings.TrimSpace(req.Username) == "" {
		return Result{}, validationError(CodeMissingUsername, "username is required")
	}

	traceID := orGenerated(req.TraceID)

	var already bool
	inst, err := e.store.Update(ctx, id, func(cur Instance) (Instance, error) {
		if cur.ID == "" {
			return cur, notFoundError(id)
		}
		if cur.Status == StatusFinished {
			return cur, terminalError(id, cur.Status)
		}
		if cur.Status == StatusAbort {
			already = true
			return cur, nil
		}
		cur.Status = StatusAbort
		cur.Note = "aborted by " + req.Username
		cur.FinishedAt = e.now()
		return cur, nil
	})
	if err != nil {
		return Result{Instance: inst, TraceID: traceID}, asEngineError(err)
	}

	e.event(emit.LevelInfo, emit.TypeReceived, "abort request accepted", inst, traceID, nil)
	if !already {
		e.transition(inst, "abort", traceID)
	}
	return Result{Instance: inst, TraceID: traceID}, nil
}

// Get returns the current record for an instance.
func (e *Engine) Get(ctx context.Context, id string) (Instance, error) {
	inst, err := e.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Instance{}, notFoundError(id)
	}
	if err != nil {
		return Instance{}, asEngineError(err)
	}
	return inst, nil
}

// runSend is the shared body of synchronous and detached sends.
func (e *Engine) runSend(ctx context.Context, id, username, instructions string, cfg ComposeConfig, traceID string) (Instance, error) {
	inst, err := e.store.Update(ctx, id, func(cur Instance) (Instance, error) {
		if cur.Status.Terminal() {
			return cur, terminalError(id, cur.Status)
		}
		cur.ID = id
		cur.Status = StatusActive
		if cur.Owner == "" {
			cur.Owner = username
		}
		if cur.StartedAt.IsZero() {
			cur.StartedAt = e.now()
		}
		cur.Compose = cfg
		cur.GenerationCount++
		return cur, nil
	})
	if err != nil {
		return inst, asEngineError(err)
	}

	e.event(emit.LevelInfo, emit.TypeReceived, "send request accepted", inst, traceID, nil)
	e.transition(inst, "send", traceID)

	return e.draftAndReview(ctx, inst, "send", instructions, "", traceID)
}

// runApprove delivers the latest draft and finishes the instance.
func (e *Engine) runApprove(ctx context.Context, id, traceID string) (Instance, error) {
	inst, err := e.store.Update(ctx, id, func(cur Instance) (Instance, error) {
		if cur.ID == "" {
			return cur, notFoundError(id)
		}
		if cur.Status.Terminal() {
			return cur, terminalError(id, cur.Status)
		}
		if cur.Status != StatusWait {
			return cur, invalidStateError(id, cur.Status, "approve")
		}
		cur.Status = StatusActive
		return cur, nil
	})
	if err != nil {
		return inst, asEngineError(err)
	}

	e.event(emit.LevelInfo, emit.TypeReceived, "approve callback accepted", inst, traceID, nil)
	e.transition(inst, "approve", traceID)
	e.event(emit.LevelInfo, emit.TypeReviewAccepted, "review approved draft", inst, traceID, nil)

	html, err := e.artifacts.LatestDraft(ctx, id)
	if err != nil {
		cause := collaboratorError(CodeDeliveryFailed, fmt.Errorf("no draft artifact: %w", err))
		return e.abortWith(ctx, inst, "approve", traceID, cause, "delivery failed: no draft artifact")
	}

	e.event(emit.LevelInfo, emit.TypeDelivering, "dispatching approved draft", inst, traceID, nil)

	result, err := e.requestDelivery(ctx, client.DeliveryRequest{
		InstanceID:  id,
		Username:    inst.Owner,
		HTML:        html,
		Subject:     inst.Compose.Subject,
		SenderEmail: inst.Compose.SenderEmail,
		SenderName:  inst.Compose.SenderName,
		To:          inst.Compose.To,
		Cc:          inst.Compose.Cc,
		Bcc:         inst.Compose.Bcc,
		TraceID:     traceID,
	})
	if err != nil {
		cause := collaboratorError(CodeDeliveryFailed, err)
		return e.abortWith(ctx, inst, "approve", traceID, cause, "delivery failed: "+err.Error())
	}

	var finished bool
	inst, uerr := e.store.Update(ctx, id, func(cur Instance) (Instance, error) {
		// A racing abort committed during delivery wins; never resurrect
		// a terminal record.
		if cur.Status.Terminal() {
			return cur, nil
		}
		cur.Status = StatusFinished
		cur.FinishedAt = e.now()
		finished = true
		return cur, nil
	})
	if uerr != nil {
		return inst, asEngineError(uerr)
	}

	if finished {
		e.metrics.RecordTransition(inst.Status, "approve")
		e.event(emit.LevelInfo, emit.TypeTransition, "instance transitioned", inst, traceID, map[string]interface{}{
			"status":     string(inst.Status),
			"trigger":    "approve",
			"message_id": result.MessageID,
		})
	}
	return inst, nil
}

// runReject aborts the instance without any collaborator calls.
func (e *Engine) runReject(ctx context.Context, id, note, traceID string) (Instance, error) {
	if note == "" {
		note = "review rejected"
	}
	inst, err := e.store.Update(ctx, id, func(cur Instance) (Instance, error) {
		if cur.ID == "" {
			return cur, notFoundError(id)
		}
		if cur.Status.Terminal() {
			return cur, terminalError(id, cur.Status)
		}
		cur.Status = StatusAbort
		cur.Note = note
		cur.FinishedAt = e.now()
		return cur, nil
	})
	if err != nil {
		return inst, asEngineError(err)
	}

	e.event(emit.LevelInfo, emit.TypeReceived, "reject callback accepted", inst, traceID, nil)
	e.event(emit.LevelWarn, emit.TypeReviewRejected, "review rejected draft", inst, traceID, map[string]interface{}{"note": note})
	e.transition(inst, "reject", traceID)
	return inst, nil
}

// runModify re-drafts with the reviewer's guidance and resubmits for
// review.
func (e *Engine) runModify(ctx context.Context, id, guidance, traceID string) (Instance, error) {
	inst, err := e.store.Update(ctx, id, func(cur Instance) (Instance, error) {
		if cur.ID == "" {
			return cur, notFoundError(id)
		}
		if cur.Status.Terminal() {
			return cur, terminalError(id, cur.Status)
		}
		cur.Status = StatusActive
		cur.GenerationCount++
		return cur, nil
	})
	if err != nil {
		return inst, asEngineError(err)
	}

	e.event(emit.LevelInfo, emit.TypeReceived, "modify callback accepted", inst, traceID, nil)
	e.transition(inst, "modify", traceID)

	prior, err := e.artifacts.LatestDraft(ctx, id)
	if err != nil {
		cause := collaboratorError(CodeDraftingFailed, fmt.Errorf("no prior draft artifact: %w", err))
		return e.abortWith(ctx, inst, "modify", traceID, cause, "drafting failed: no prior draft artifact")
	}

	return e.draftAndReview(ctx, inst, "modify", wrapGuidance(guidance), prior, traceID)
}

// draftAndReview is the shared tail of the send and modify paths: request
// a draft, persist the artifact, submit for review, and park in wait or
// abort.
func (e *Engine) draftAndReview(ctx context.Context, inst Instance, trigger, instructions, priorHTML, traceID string) (Instance, error) {
	id := inst.ID

	e.event(emit.LevelInfo, emit.TypeDrafting, "requesting draft", inst, traceID, map[string]interface{}{
		"generation": inst.GenerationCount,
	})

	draft, err := e.requestDraft(ctx, client.DraftRequest{
		InstanceID:   id,
		Username:     inst.Owner,
		Instructions: instructions,
		PriorHTML:    priorHTML,
		Subject:      inst.Compose.Subject,
		TraceID:      traceID,
	})
	if err != nil {
		cause := collaboratorError(CodeDraftingFailed, err)
		return e.abortWith(ctx, inst, trigger, traceID, cause, "drafting failed: "+err.Error())
	}

	if err := e.artifacts.SaveDraft(ctx, id, draft.HTML); err != nil {
		cause := collaboratorError(CodeDraftingFailed, fmt.Errorf("failed to persist draft artifact: %w", err))
		return e.abortWith(ctx, inst, trigger, traceID, cause, "drafting failed: could not persist draft")
	}

	outcome, err := e.requestReview(ctx, client.ReviewRequest{
		InstanceID: id,
		Username:   inst.Owner,
		HTML:       draft.HTML,
		Config:     inst.Compose.Review,
		LoopIndex:  inst.LoopIndex(),
		TraceID:    traceID,
	})
	if err != nil {
		// Transport failure on the review path counts as not accepted.
		outcome = client.ReviewOutcome{Accepted: false, ErrorDetail: err.Error()}
	}

	if !outcome.Accepted {
		detail := outcome.ErrorDetail
		if detail == "" {
			detail = outcome.Note
		}
		e.event(emit.LevelWarn, emit.TypeReviewRejected, "review submission not accepted", inst, traceID, map[string]interface{}{
			"detail": detail,
		})
		return e.abortWith(ctx, inst, trigger, traceID, nil, "review not accepted: "+detail)
	}

	e.event(emit.LevelInfo, emit.TypeReviewSubmitted, "draft submitted for review", inst, traceID, map[string]interface{}{
		"loop_index": inst.LoopIndex(),
		"model":      draft.Model,
	})

	var parked bool
	inst, uerr := e.store.Update(ctx, id, func(cur Instance) (Instance, error) {
		if cur.Status.Terminal() {
			return cur, nil
		}
		cur.Status = StatusWait
		parked = true
		return cur, nil
	})
	if uerr != nil {
		return inst, asEngineError(uerr)
	}

	if parked {
		e.transition(inst, trigger, traceID)
	}
	return inst, nil
}

// abortWith drives the instance to abort after a failure, emitting the
// failure event first so event order matches execution order. A nil cause
// means the abort itself is the outcome, not an error to surface.
func (e *Engine) abortWith(ctx context.Context, inst Instance, trigger, traceID string, cause error, note string) (Instance, error) {
	if cause != nil {
		e.event(emit.LevelError, emit.TypeFailure, note, inst, traceID, map[string]interface{}{
			"error": cause.Error(),
		})
	}

	var aborted bool
	next, err := e.store.Update(ctx, inst.ID, func(cur Instance) (Instance, error) {
		if cur.Status.Terminal() {
			return cur, nil
		}
		cur.Status = StatusAbort
		cur.Note = note
		cur.FinishedAt = e.now()
		aborted = true
		return cur, nil
	})
	if err != nil {
		if cause != nil {
			return next, cause
		}
		return next, asEngineError(err)
	}

	if aborted {
		e.transition(next, trigger, traceID)
	}
	return next, cause
}

func (e *Engine) composeFor(ctx context.Context, username string) (ComposeConfig, error) {
	if e.compose == nil {
		return ComposeConfig{}, nil
	}
	return e.compose.Compose(ctx, username)
}

// requestDraft wraps the drafting client with latency metrics.
func (e *Engine) requestDraft(ctx context.Context, req client.DraftRequest) (client.DraftResult, error) {
	start := time.Now()
	result, err := e.clients.Drafting.RequestDraft(ctx, req)
	e.metrics.RecordCollaboratorLatency("drafting", time.Since(start), callStatus(err))
	return result, err
}

// requestReview wraps the review client with latency metrics.
func (e *Engine) requestReview(ctx context.Context, req client.ReviewRequest) (client.ReviewOutcome, error) {
	start := time.Now()
	outcome, err := e.clients.Review.RequestReview(ctx, req)
	e.metrics.RecordCollaboratorLatency("review", time.Since(start), callStatus(err))
	return outcome, err
}

// requestDelivery wraps the delivery client with latency metrics.
func (e *Engine) requestDelivery(ctx context.Context, req client.DeliveryRequest) (client.DeliveryResult, error) {
	start := time.Now()
	result, err := e.clients.Delivery.RequestDelivery(ctx, req)
	e.metrics.RecordCollaboratorLatency("delivery", time.Since(start), callStatus(err))
	return result, err
}

func callStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (e *Engine) event(level emit.Level, typ, msg string, inst Instance, traceID string, meta map[string]interface{}) {
	e.emitter.Emit(emit.Event{
		Time:       e.now(),
		Level:      level,
		Type:       typ,
		Msg:        msg,
		InstanceID: inst.ID,
		Username:   inst.Owner,
		TraceID:    traceID,
		Meta:       meta,
	})
}

// transition emits the single lifecycle event for a committed transition
// and records it in metrics.
func (e *Engine) transition(inst Instance, trigger, traceID string) {
	e.metrics.RecordTransition(inst.Status, trigger)
	e.event(emit.LevelInfo, emit.TypeTransition, "instance transitioned", inst, traceID, map[string]interface{}{
		"status":  string(inst.Status),
		"trigger": trigger,
	})
}

// wrapGuidance marks reviewer free text as the authoritative instruction
// for the next drafting pass.
func wrapGuidance(guidance string) string {
	if strings.TrimSpace(guidance) == "" {
		return "Revise the prior draft."
	}
	var sb strings.Builder
	sb.WriteString("=== REVISED INSTRUCTION ===\n")
	sb.WriteString(guidance)
	sb.WriteString("\n=== END REVISED INSTRUCTION ===\n")
	sb.WriteString("Treat the revised instruction above as the authoritative instruction and revise the prior draft accordingly.")
	return sb.String()
}

// normalizeInstanceID accepts a caller-supplied id when it is non-empty
// printable text, and generates a fresh one otherwise.
func normalizeInstanceID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || !printable(id) {
		return uuid.New().String()
	}
	return id
}

func printable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

func orGenerated(traceID string) string {
	if strings.TrimSpace(traceID) == "" {
		return uuid.New().String()
	}
	return traceID
}
