package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scerrors "github.com/YuminosukeSato/estimator/pkg/errors"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestZerologLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	logger.Debug("hidden")
	logger.Info("fit done", SamplesKey, 3, FeaturesKey, 2)
	logger.Warn("careful")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "fit done", lines[0]["message"])
	assert.Equal(t, 3.0, lines[0][SamplesKey])
	assert.Equal(t, 2.0, lines[0][FeaturesKey])
	assert.Equal(t, "warn", lines[1]["level"])

	assert.False(t, logger.Enabled(context.Background(), LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), LevelError))
}

func TestZerologLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug).With(ModelNameKey, "KMeans")

	logger.Debug("predict", OperationKey, OperationPredict)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "KMeans", lines[0][ModelNameKey])
	assert.Equal(t, OperationPredict, lines[0][OperationKey])
}

func TestZerologLogger_ErrorCarriesDetailAndStack(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)

	err := scerrors.NewNotFittedError("LinearRegression", "Predict")
	logger.Error("predict failed", err, ErrorCodeKey, ErrorNotFitted)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0][ErrAttrKey], "not fitted yet")
	assert.Equal(t, ErrorNotFitted, lines[0][ErrorCodeKey])
	assert.NotEmpty(t, lines[0][StacktraceKey])

	detail, ok := lines[0][ErrDetailKey].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "NotFittedError", detail["type"])
	assert.Equal(t, "Predict", detail["method"])
}

func TestZerologLogger_OddFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)

	logger.Info("odd", "key")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "key", lines[0]["!BADKEY"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"", LevelInfo},
		{"warning", LevelWarn},
		{" error ", LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	var valErr *scerrors.ValidationError
	assert.True(t, scerrors.As(err, &valErr))
}

func TestSetLogger(t *testing.T) {
	prev := GetLogger()
	defer SetLogger(prev)

	testLogger, _ := NewTestLogger(LevelDebug)
	SetLogger(testLogger)
	SetLogger(nil)

	GetLoggerWithName("linear").Info("hello")
	assert.True(t, testLogger.ContainsMessage("hello"))
	assert.True(t, testLogger.ContainsField(ComponentKey, "linear"))
}

func TestTestLogger(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelInfo)

	testLogger.Debug("debug message")
	testLogger.Info("info message", OperationKey, OperationFit, SamplesKey, 10)
	testLogger.With(ModelNameKey, "Demo").Error("failed", scerrors.ErrNotImplemented, "extra", "x")

	assert.NotContains(t, buffer.String(), "debug message")
	assert.True(t, testLogger.ContainsMessage("info message"))
	assert.True(t, testLogger.ContainsField(SamplesKey, 10.0))
	assert.True(t, testLogger.ContainsField(ModelNameKey, "Demo"))
	assert.True(t, testLogger.ContainsField(ErrAttrKey, "not implemented"))

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	testLogger.Clear()
	assert.Empty(t, buffer.String())
}
