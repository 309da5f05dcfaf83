package handler

import (
	"net/http"

	"github.com/helpdock/helpdock/internal/agent"
	"github.com/helpdock/helpdock/internal/api/response"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck reports readiness: at least one assistant provider must be
// configured for the chat endpoint to work.
func ReadyCheck(agents *agent.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providers := agents.ListProviders()
		if len(providers) == 0 {
			response.Error(w, http.StatusServiceUnavailable, "no assistant provider configured")
			return
		}

		response.OK(w, map[string]any{
			"status":    "ready",
			"providers": providers,
		})
	}
}
