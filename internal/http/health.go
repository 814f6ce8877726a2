package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mymotiv/internal/database"
)

// ConnectionStates reports per-domain connection state.
type ConnectionStates interface {
	Domains() []database.Domain
	State(domain database.Domain) database.ConnState
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Time      string            `json:"time"`
	Version   string            `json:"version,omitempty"`
	Databases map[string]string `json:"databases"`
}

type HealthController struct {
	connections ConnectionStates
	required    map[database.Domain]bool
	version     string
}

// NewHealthController reports unhealthy when any of the required domains
// is not connected.
func NewHealthController(connections ConnectionStates, version string, required ...database.Domain) *HealthController {
	h := &HealthController{
		connections: connections,
		required:    make(map[database.Domain]bool, len(required)),
		version:     version,
	}
	for _, d := range required {
		h.required[d] = true
	}
	return h
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.connections != nil {
		for _, domain := range h.connections.Domains() {
			state := h.connections.State(domain)
			checks[string(domain)] = state.String()
			if h.required[domain] && state != database.StateReady {
				status = "unhealthy"
			}
		}
	}

	health := HealthResponse{
		Status:    status,
		Time:      time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Databases: checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, Envelope{
		Success:   statusCode == http.StatusOK,
		Data:      health,
		Timestamp: time.Now().UTC(),
	})
}
