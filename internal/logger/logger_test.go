package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLevels(t *testing.T) {
	for _, tc := range []struct {
		name          string
		expectedLevel zapcore.Level
	}{
		{name: "Debug", expectedLevel: zapcore.DebugLevel},
		{name: "Info", expectedLevel: zapcore.InfoLevel},
		{name: "Warn", expectedLevel: zapcore.WarnLevel},
		{name: "Error", expectedLevel: zapcore.ErrorLevel},
	} {
		dut, logs := NewObserverLogger(zap.DebugLevel)
		const testMessage = "ABC"
		switch tc.name {
		case "Debug":
			dut.Debug(testMessage)
		case "Info":
			dut.Info(testMessage)
		case "Warn":
			dut.Warn(testMessage)
		case "Error":
			dut.Error(testMessage)
		}
		require.Equal(t, 1, logs.Len())

		entry := logs.All()[0]
		require.Equal(t, testMessage, entry.Message)
		require.Equal(t, tc.expectedLevel, entry.Level)
	}
}

func TestWith(t *testing.T) {
	dut, logs := NewObserverLogger(zap.InfoLevel)
	child := dut.With(zap.Int("worker", 3))
	child.Info("tile done")
	dut.Debug("dropped")

	require.Equal(t, 1, logs.Len())
	require.Equal(t, map[string]interface{}{"worker": int64(3)}, logs.All()[0].ContextMap())
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "text"} {
		for _, level := range []string{"debug", "info", "warn", "error", "none"} {
			l, err := NewLogger(format, level)
			require.NoError(t, err, "%s/%s", format, level)
			require.NotNil(t, l)
		}
	}

	_, err := NewLogger("json", "verbose")
	require.Error(t, err)
	_, err = NewLogger("xml", "info")
	require.Error(t, err)
}
