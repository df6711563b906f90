package testutil

import (
	"bytes"
	"io"

	"github.com/dtroode/filegate-session/internal/logger"
)

func MakeNoopLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, 0, false)
}

// MakeBufferLogger returns a debug-level logger and the buffer it writes to,
// for tests asserting on emitted warnings.
func MakeBufferLogger() (*logger.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return logger.NewWithWriter(buf, -4, false), buf
}
