package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitializeWritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	l := Initialize("chat_service", dir)
	l.Info("hello", zap.Int64("chat_id", 5))
	l.Sync()

	name := filepath.Join(dir, "log_"+time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"chat_id":5`)
	assert.Contains(t, string(data), `"service":"chat_service"`)
}

func TestDebugModeToggle(t *testing.T) {
	l := Initialize("chat_service", t.TempDir())
	assert.False(t, l.isDebug())

	l.EnableDebugMode()
	assert.True(t, l.isDebug())

	child := l.With(zap.String("conn", "x"))
	l.DisableDebugMode()
	assert.False(t, child.isDebug(), "child shares the parent switch")
}

func TestNopLogger(t *testing.T) {
	SetNewNop()
	assert.NotPanics(t, func() {
		Log.Info("ignored")
		Log.Errorf("ignored", os.ErrNotExist)
		Log.With(zap.String("k", "v")).Debug("ignored")
	})
}
