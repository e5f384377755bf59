package testutil

import (
	"io"

	"github.com/stratpoint-engineering/enterprise-api/internal/logger"
)

// MakeNoopLogger returns a logger that discards everything.
func MakeNoopLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, 0, "test")
}
