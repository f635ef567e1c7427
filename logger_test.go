package mmf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	entries []string
}

func (r *recordingLogger) Log(level LogLevel, msg string) {
	r.entries = append(r.entries, msg)
	_ = level
}

func TestSetLoggerInstallsAndRestoresNoop(t *testing.T) {
	a := assert.New(t)
	rec := &recordingLogger{}
	SetLogger(rec)
	logger().Log(LogWarning, "hello")
	a.Equal([]string{"hello"}, rec.entries)

	SetLogger(nil)
	a.NotPanics(func() { logger().Log(LogError, "swallowed") })
}
