// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics exposes the process's prometheus metrics over HTTP.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StartMetricsServer serves the default prometheus registry on the
// given port. Errors after startup are logged, not returned.
func StartMetricsServer(logger log.Logger, port uint16) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		addr := fmt.Sprintf(":%d", port)
		logger.Info("starting metrics server", log.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics server exited", log.Err(err))
		}
	}()
}
