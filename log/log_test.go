package log

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLevelStringDefaultsToInfo(t *testing.T) {
	SetLevelString("")
	assert.Equal(t, "info", root.GetLevel().String())

	SetLevelString("bogus")
	assert.Equal(t, "info", root.GetLevel().String())

	SetLevelString("debug")
	assert.Equal(t, "debug", root.GetLevel().String())
	SetLevelString("info")
}

func TestEmitDoesNotPanicOnVariousShapes(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("plain message")
		Info(context.Background(), "with ctx", "key", "value")
		Warn("warn message", "key", 1)
		Error("error message", errors.New("boom"), "key", "value")
		Error(context.Background(), "error with ctx", errors.New("boom"))
		Debug(42) // unsupported first-arg type is silently ignored
	})
}

func TestWithRequestIDAttachesField(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.NotPanics(t, func() {
		Info(ctx, "request handled")
	})
}
