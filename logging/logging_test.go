package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_Streams(t *testing.T) {
	var info, errs bytes.Buffer
	l := NewDefaultLoggerTo(&info, &errs, "gl3", false)

	l.Infof("pass %s ready", "bloom")
	l.Debugf("hidden %d", 1)
	l.Errorf("reload failed: %v", "missing file")
	l.Warnf("unknown condition")

	assert.Contains(t, info.String(), "[gl3] INFO: pass bloom ready")
	assert.NotContains(t, info.String(), "hidden")
	assert.Contains(t, errs.String(), "[gl3] ERROR: reload failed: missing file")
	assert.Contains(t, errs.String(), "[gl3] WARN: unknown condition")

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("visible %d", 2)
	assert.Contains(t, info.String(), "DEBUG: visible 2")
}

func TestOrNop(t *testing.T) {
	l := OrNop(nil)
	assert.NotNil(t, l)
	assert.False(t, l.DebugEnabled())
	l.Errorf("ignored")

	d := NewDefaultLogger("", false)
	assert.Same(t, d, OrNop(d))
}

func TestNamed_SharesStreamsAndDebug(t *testing.T) {
	var info, errs bytes.Buffer
	root := NewStreamLogger(Streams{Info: &info, Error: &errs}, "drift", false)
	backend := root.Named("headless")
	assert.Equal(t, "drift/headless", backend.Prefix())

	backend.Warnf("texture %s missing", "noise.png")
	assert.Contains(t, errs.String(), "[drift/headless] WARN: texture noise.png missing")

	backend.Debugf("frame %d", 1)
	assert.Empty(t, info.String())
	root.SetDebug(true)
	assert.True(t, backend.DebugEnabled())
	backend.Debugf("frame %d", 2)
	assert.Contains(t, info.String(), "[drift/headless] DEBUG: frame 2")

	assert.Equal(t, "watcher", NewDefaultLoggerTo(&info, nil, "", false).Named("watcher").Prefix())
}

func TestComponent(t *testing.T) {
	var out bytes.Buffer
	l := NewDefaultLoggerTo(&out, &out, "drift", false)
	Component(l, "pipeline").Errorf("no passes")
	assert.Contains(t, out.String(), "[drift/pipeline] ERROR: no passes")

	assert.NotNil(t, Component(nil, "pipeline"))
	nop := NewNopLogger()
	assert.Equal(t, nop, Component(nop, "pipeline"))
}

func TestStreamLogger_ErrorsFallBackToInfo(t *testing.T) {
	var info bytes.Buffer
	l := NewStreamLogger(Streams{Info: &info}, "", false)
	l.Errorf("shader %s failed", "bloom.frag")
	assert.Contains(t, info.String(), "ERROR: shader bloom.frag failed")
	assert.Equal(t, "WARN", LevelWarn.String())
}
