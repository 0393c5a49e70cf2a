package logger_test

import (
	"testing"

	"github.com/catalog-admin-api/pkg/logger"
	"github.com/rs/zerolog"
)

func TestNew_LevelFromConfig(t *testing.T) {
	cases := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tc := range cases {
		log := logger.New(tc.level, "json")
		if log.GetLevel() != tc.want {
			t.Errorf("level %q: expected %s, got %s", tc.level, tc.want, log.GetLevel())
		}
	}
}

func TestNew_PrettyFormat(t *testing.T) {
	log := logger.New("info", "pretty")
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("Expected info level, got %s", log.GetLevel())
	}
}
