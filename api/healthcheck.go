// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"
	"net/http"

	"github.com/alexliesenfeld/health"
)

// RegisterHealthCheck mounts the /health endpoint on mux. checkFunc
// should verify the node's critical dependencies.
func RegisterHealthCheck(mux *http.ServeMux, checkFunc func(context.Context) error) {
	healthChecker := health.NewChecker(
		health.WithCheck(health.Check{
			Name:  "nftbridge-health",
			Check: checkFunc,
		}),
	)

	mux.Handle("/health", health.NewHandler(healthChecker))
}
