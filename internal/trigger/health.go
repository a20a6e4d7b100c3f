package trigger

import (
	"encoding/json"
	"net/http"

	"github.com/C4AI/blab-chatbot-bot-client/internal/bridge"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status        string               `json:"status"`
	Conversations int                  `json:"conversations"`
	States        map[bridge.State]int `json:"states,omitempty"`
}

// handleHealth returns an http.HandlerFunc for GET /health. It always
// reports 200 while the server is serving.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{Status: "ok"}
		if s.registry != nil {
			resp.Conversations = s.registry.Len()
			resp.States = s.registry.CountByState()
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
