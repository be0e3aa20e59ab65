package flow

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError(t *testing.T) {
	t.Run("message includes code", func(t *testing.T) {
		err := validationError(CodeMissingUsername, "username is required")
		if got := err.Error(); got != "MISSING_USERNAME: username is required" {
			t.Errorf("Error() = %q", got)
		}
		if err.Status != http.StatusBadRequest {
			t.Errorf("Status = %d", err.Status)
		}
	})

	t.Run("unwraps cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := collaboratorError(CodeDraftingFailed, cause)
		if !errors.Is(err, cause) {
			t.Error("cause not reachable through Unwrap")
		}
		if err.Status != http.StatusBadGateway {
			t.Errorf("Status = %d", err.Status)
		}
	})

	t.Run("IsCode matches wrapped errors", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", terminalError("i-1", StatusFinished))
		if !IsCode(err, CodeInstanceTerminal) {
			t.Error("IsCode should see through wrapping")
		}
		if IsCode(err, CodeInstanceNotFound) {
			t.Error("IsCode matched the wrong code")
		}
		if IsCode(nil, CodeInstanceTerminal) {
			t.Error("IsCode(nil) should be false")
		}
	})
}

func TestAsEngineError(t *testing.T) {
	t.Run("passes structured errors through", func(t *testing.T) {
		orig := notFoundError("i-1")
		if got := asEngineError(orig); got != error(orig) {
			t.Errorf("asEngineError rewrapped a structured error: %v", got)
		}
	})

	t.Run("wraps plain errors as store failures", func(t *testing.T) {
		err := asEngineError(errors.New("disk full"))
		if !IsCode(err, CodeStoreFailed) {
			t.Errorf("error = %v, want code %s", err, CodeStoreFailed)
		}
	})

	t.Run("nil stays nil", func(t *testing.T) {
		if asEngineError(nil) != nil {
			t.Error("asEngineError(nil) should be nil")
		}
	})
}

func TestStatusTerminal(t *testing.T) {
	for _, tt := range []struct {
		status Status
		want   bool
	}{
		{StatusActive, false},
		{StatusWait, false},
		{StatusFinished, true},
		{StatusAbort, true},
	} {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
