package api

import (
	"net/http"
	"time"
)

// HealthResponse reports the server's dependency health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	if err := s.db.SQL.PingContext(r.Context()); err != nil {
		dbStatus = "error"
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services: map[string]string{
			"database": dbStatus,
		},
	}

	if dbStatus != "ok" {
		response.Status = "unhealthy"
		if err := writeJSON(w, http.StatusServiceUnavailable, response); err != nil {
			s.internalServerError(w, r, err)
		}
		return
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		s.internalServerError(w, r, err)
	}
}
