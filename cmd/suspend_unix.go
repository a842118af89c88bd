//go:build unix

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/illarion/pinvault/internal/lifecycle"
)

// watchSuspend turns job-control stops into lifecycle events: Ctrl-Z sends
// the app to the background, fg brings it back.
func watchSuspend(ctx context.Context, events chan<- lifecycle.Event) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTSTP, syscall.SIGCONT)

	go func() {
		defer signal.Stop(sigs)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigs:
				switch sig {
				case syscall.SIGTSTP:
					if !sendEvent(ctx, events, lifecycle.Background) {
						return
					}
					_ = syscall.Kill(os.Getpid(), syscall.SIGSTOP)
				case syscall.SIGCONT:
					if !sendEvent(ctx, events, lifecycle.Foreground) {
						return
					}
				}
			}
		}
	}()
}

func sendEvent(ctx context.Context, events chan<- lifecycle.Event, state lifecycle.AppState) bool {
	select {
	case events <- lifecycle.Event{State: state, At: time.Now()}:
		return true
	case <-ctx.Done():
		return false
	}
}
