package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSet_RestoresPrevious(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := Set(zap.New(core).Sugar())

	Get().Infow("hello", "k", "v")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "hello", logs.All()[0].Message)
	assert.Equal(t, "v", logs.All()[0].ContextMap()["k"])

	restore()
	Get().Info("not observed")
	assert.Equal(t, 1, logs.Len())
}

func TestBuild_LevelFallback(t *testing.T) {
	l, err := build(Options{Level: "nonsense"})
	require.NoError(t, err)
	assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestBuild_DebugLevel(t *testing.T) {
	l, err := build(Options{Level: "debug", Environment: "production"})
	require.NoError(t, err)
	assert.True(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestInit_ReplacesGlobal(t *testing.T) {
	restore := Set(nil)
	t.Cleanup(restore)

	require.NoError(t, Init(Options{Level: "warn"}))
	assert.False(t, Get().Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestGet_DefaultsWhenUninitialized(t *testing.T) {
	restore := Set(nil)
	t.Cleanup(restore)
	assert.NotNil(t, Get())
}
