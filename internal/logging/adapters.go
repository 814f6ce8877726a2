package logging

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// RequestIDHeader carries the per-request id echoed back to clients.
const RequestIDHeader = "X-Request-ID"

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// GinMiddleware logs one line per request and assigns a request id when the
// client did not send one.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = Logger.Error()
		case status >= 400:
			event = Logger.Warn()
		default:
			event = Logger.Info()
		}

		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// TaskLogger implements backlite.Logger.
type TaskLogger struct{}

func (TaskLogger) Info(message string, params ...any) {
	Logger.Info().Str("component", "tasks").Fields(params).Msg(message)
}

func (TaskLogger) Error(message string, params ...any) {
	Logger.Error().Str("component", "tasks").Fields(params).Msg(message)
}

// gormWriter adapts zerolog to gorm's logger.Writer.
type gormWriter struct {
	domain string
}

func (w gormWriter) Printf(format string, args ...any) {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	Logger.Debug().Str("component", "gorm").Str("domain", w.domain).Msg(msg)
}

// GormLogger builds a gorm logger for one domain database. Query tracing is
// only emitted when verbose is set and the global level is debug.
func GormLogger(domain string, verbose bool) gormlogger.Interface {
	level := gormlogger.Silent
	if verbose {
		level = gormlogger.Info
	}
	return gormlogger.New(gormWriter{domain: domain}, gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
