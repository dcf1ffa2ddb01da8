package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestWrapTimeout(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		if WrapTimeout(nil) != nil {
			t.Error("expected nil")
		}
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		err := WrapTimeout(fmt.Errorf("request failed: %w", context.DeadlineExceeded))
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Error("expected original error to be preserved")
		}
	})

	t.Run("net timeout", func(t *testing.T) {
		if err := WrapTimeout(timeoutErr{}); !errors.Is(err, ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("other errors unchanged", func(t *testing.T) {
		orig := errors.New("connection refused")
		if err := WrapTimeout(orig); err != orig {
			t.Errorf("expected unchanged error, got %v", err)
		}
	})
}
