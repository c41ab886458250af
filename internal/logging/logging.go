// Package logging configures the service logger and request logging.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// New builds the root logger. Level strings follow zerolog
// (trace/debug/info/warn/error); unknown values fall back to info.
func New(service, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", service).
		Logger().
		Level(ParseLevel(level))
}

// ParseLevel maps a level string to a zerolog level, defaulting to info.
func ParseLevel(value string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return zerolog.InfoLevel
	}
	if lvl, err := zerolog.ParseLevel(s); err == nil {
		return lvl
	}
	return zerolog.InfoLevel
}

// RequestLogger logs one line per handled request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		event := log.Info()
		if c.Writer.Status() >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("request")
	}
}
