//go:build !unix

package cmd

import (
	"context"

	"github.com/illarion/pinvault/internal/lifecycle"
)

func watchSuspend(context.Context, chan<- lifecycle.Event) {}
