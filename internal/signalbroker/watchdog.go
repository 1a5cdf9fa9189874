// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/posterbatch/internal/ctxlog"
)

// Watch reads sigCh until it is closed and calls cancel on the second signal of any one type.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Info(ctx, "watchdog",
				"detail", "received second signal of type, cancelling batch", "signal", sig.String())
			cancel()

			return
		}

		ctxlog.Info(ctx, "watchdog", "detail", "received first signal of type, forwarded to generator", "signal", sig.String())

		seen[sig] = struct{}{}
	}
}
