package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/javi-app/javi-backend/api/responses"
	"github.com/javi-app/javi-backend/pkg/config"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
	"github.com/javi-app/javi-backend/pkg/logger"
)

// ReadinessCheck probes one backing dependency.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Javi-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every backing dependency answers.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks ...ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Javi-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		for _, check := range checks {
			if check.Check == nil {
				continue
			}
			if err := check.Check(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.Name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
