package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/intake/pkg/utils/logging"
)

func TestParseLogLevel(t *testing.T) {
	gt.Equal(t, logging.ParseLogLevel("DEBUG"), slog.LevelDebug)
	gt.Equal(t, logging.ParseLogLevel(" warning "), slog.LevelWarn)
	gt.Equal(t, logging.ParseLogLevel("error"), slog.LevelError)
	gt.Equal(t, logging.ParseLogLevel("verbose"), slog.LevelInfo)

	_, ok := logging.LookupLogLevel("verbose")
	gt.False(t, ok)
	lv, ok := logging.LookupLogLevel("Info")
	gt.True(t, ok)
	gt.Equal(t, lv, slog.LevelInfo)
}

func TestParseFormat(t *testing.T) {
	for input, expected := range map[string]logging.Format{
		"console": logging.FormatConsole,
		"JSON":    logging.FormatJSON,
		"auto":    logging.FormatAuto,
		"":        logging.FormatAuto,
	} {
		got, err := logging.ParseFormat(input)
		gt.NoError(t, err)
		gt.Equal(t, got, expected)
	}

	_, err := logging.ParseFormat("xml")
	gt.Error(t, err)
}

func TestNewLoggerWithFormat(t *testing.T) {
	t.Run("non-terminal writers get JSON", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewLogger(slog.LevelInfo, &buf)
		logger.Debug("hidden")
		logger.Info("record saved", "code", "INC-07-03-001")

		var line map[string]any
		gt.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		gt.Equal(t, line["msg"], any("record saved"))
		gt.Equal(t, line["code"], any("INC-07-03-001"))
	})

	t.Run("console format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewLoggerWithFormat(slog.LevelInfo, &buf, logging.FormatConsole)
		logger.Info("record saved")
		gt.S(t, buf.String()).Contains("record saved")
	})
}
