package controllers

import (
	"context"
	"net/http"

	"github.com/mateovergara/sitesupply-backend/api/responses"
	"github.com/mateovergara/sitesupply-backend/pkg/config"
	pkgerrors "github.com/mateovergara/sitesupply-backend/pkg/errors"
	"github.com/mateovergara/sitesupply-backend/pkg/logger"
)

const envHeader = "X-SiteSupply-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, pubsubP pinger) http.HandlerFunc {
	checks := []struct {
		name string
		dep  pinger
	}{
		{"database", dbP},
		{"redis", redisP},
		{"pubsub", pubsubP},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		for _, check := range checks {
			if check.dep == nil {
				continue
			}
			if err := check.dep.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
