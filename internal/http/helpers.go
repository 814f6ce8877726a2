package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mymotiv/internal/apperrors"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/logging"
)

// --- Response Types ---

// Envelope is the body of every API response.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func newPagination[T any](p database.Paginated[T]) *Pagination {
	return &Pagination{
		Page:  p.Page.Number,
		Limit: p.Page.Size,
		Total: p.Total,
		Pages: p.Pages(),
	}
}

// --- Success Response Helpers ---

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Timestamp: time.Now().UTC()})
}

func respondMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data, Timestamp: time.Now().UTC()})
}

func respondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data, Timestamp: time.Now().UTC()})
}

// respondPage sends one page of items with its pagination block.
func respondPage[T any](c *gin.Context, page database.Paginated[T]) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, Envelope{
		Success:    true,
		Data:       items,
		Pagination: newPagination(page),
		Timestamp:  time.Now().UTC(),
	})
}

// --- Error Response Helpers ---

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotConnected):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps err to a status and a caller-facing message. Internal
// failures are logged with detail and answered generically.
func respondError(c *gin.Context, err error, operation string) {
	status := statusFor(err)
	message := apperrors.Message(err)
	if status >= http.StatusInternalServerError {
		logging.Error().Err(err).
			Str("operation", operation).
			Str("request_id", c.GetString(logging.RequestIDKey)).
			Msg("request failed")
	}
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	respondStatus(c, status, message)
}

func respondStatus(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: false, Error: message, Timestamp: time.Now().UTC()})
}

func respondBadRequest(c *gin.Context, message string) {
	respondStatus(c, http.StatusBadRequest, message)
}

// --- Parameter Parsing ---

// parsePage reads the page and limit query parameters. Absent values take
// the defaults; present values must be in range.
func parsePage(c *gin.Context) (database.Page, bool) {
	number, ok := queryInt(c, "page", 1)
	if !ok || number < 1 {
		respondBadRequest(c, "Page must be a positive integer")
		return database.Page{}, false
	}
	size, ok := queryInt(c, "limit", database.DefaultPageSize)
	if !ok || size < 1 || size > database.MaxPageSize {
		respondBadRequest(c, "Limit must be between 1 and 100")
		return database.Page{}, false
	}
	return database.NewPage(number, size), true
}

func queryInt(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// bindJSON decodes the request body or answers 400.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondBadRequest(c, "Invalid request body")
		return false
	}
	return true
}
