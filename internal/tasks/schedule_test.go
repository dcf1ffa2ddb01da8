package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	tu "github.com/desertthunder/nowplaying/internal/testing"
)

func TestPeriodic(t *testing.T) {
	t.Run("runs immediately then on interval", func(t *testing.T) {
		var n atomic.Int32
		p := NewPeriodic(10*time.Millisecond, func(context.Context) { n.Add(1) })

		if !p.Start(context.Background()) {
			t.Fatal("expected Start to succeed")
		}
		tu.Eventually(t, time.Second, func() bool { return n.Load() >= 3 }, "three calls")
		p.Stop()

		after := n.Load()
		time.Sleep(30 * time.Millisecond)
		if n.Load() != after {
			t.Errorf("calls after Stop: %d -> %d", after, n.Load())
		}
		if p.Running() {
			t.Error("expected not running after Stop")
		}
	})

	t.Run("second Start is rejected", func(t *testing.T) {
		p := NewPeriodic(time.Hour, func(context.Context) {})
		defer p.Stop()

		if !p.Start(context.Background()) {
			t.Fatal("expected first Start to succeed")
		}
		if p.Start(context.Background()) {
			t.Error("expected second Start to be rejected")
		}
	})

	t.Run("restart after stop", func(t *testing.T) {
		var n atomic.Int32
		p := NewPeriodic(time.Hour, func(context.Context) { n.Add(1) })

		p.Start(context.Background())
		tu.Eventually(t, time.Second, func() bool { return n.Load() == 1 }, "eager call")
		p.Stop()
		p.Stop()

		p.Start(context.Background())
		defer p.Stop()
		tu.Eventually(t, time.Second, func() bool { return n.Load() == 2 }, "eager call on restart")
	})

	t.Run("parent cancellation ends loop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		p := NewPeriodic(time.Millisecond, func(context.Context) {})
		p.Start(ctx)
		cancel()
		tu.Eventually(t, time.Second, func() bool { return !p.Running() }, "loop to exit")
	})
}
