package health

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/princekumarofficial/videos-service/internal/utils/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthz reports whether storage is reachable
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /healthz [get]
func Healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			slog.Warn("Health check failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusServiceUnavailable, response.GeneralError(errors.New("storage unavailable")))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("ok", nil))
	}
}
