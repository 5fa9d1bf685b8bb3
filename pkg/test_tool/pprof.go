package testtool

import (
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof on the default mux

	"chat_relay_service/pkg/config"
	"chat_relay_service/pkg/logger"

	"go.uber.org/zap"
)

// StartPprof serves pprof on addr when enabled and not in production.
func StartPprof(enabled bool, addr string) bool {
	if !enabled || config.IsProduction() {
		logger.Log.Info("pprof is disabled")
		return false
	}

	go func() {
		logger.Log.Info("Starting pprof server", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Log.Error("pprof server failed", zap.Error(err))
		}
	}()
	return true
}
