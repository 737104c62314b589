package main

// Notes:
// - notifyContext: only context behavior is tested. Actual signal delivery
//   is non-deterministic and platform-specific.

import (
	"context"
	"testing"
)

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cancelBy   string // "", "stop" or "parent"
		wantClosed bool
	}{
		{name: "starts open"},
		{name: "stop cancels", cancelBy: "stop", wantClosed: true},
		{name: "parent cancels", cancelBy: "parent", wantClosed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parent, cancel := context.WithCancel(context.Background())
			defer cancel()
			ctx, stop := notifyContext(parent)
			defer stop()

			switch tt.cancelBy {
			case "stop":
				stop()
			case "parent":
				cancel()
			}

			select {
			case <-ctx.Done():
				if !tt.wantClosed {
					t.Fatal("context cancelled without stop or parent cancel")
				}
			default:
				if tt.wantClosed {
					t.Fatal("context still open")
				}
			}
		})
	}
}
