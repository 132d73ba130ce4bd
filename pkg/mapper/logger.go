package mapper

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Logger receives the non-fatal events of a mapping run. The message is a
// template with {name} placeholders resolved from context.
type Logger interface {
	Log(level zerolog.Level, message string, context map[string]any)
}

type nopLogger struct{}

func (nopLogger) Log(zerolog.Level, string, map[string]any) {}

type zerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger adapts a zerolog logger. Placeholders are interpolated into
// the message and the context is attached as structured fields.
func NewZerologLogger(logger zerolog.Logger) Logger {
	return &zerologLogger{logger: logger}
}

func (l *zerologLogger) Log(level zerolog.Level, message string, context map[string]any) {
	l.logger.WithLevel(level).Fields(context).Msg(interpolate(message, context))
}

func interpolate(message string, context map[string]any) string {
	if len(context) == 0 || !strings.Contains(message, "{") {
		return message
	}
	pairs := make([]string, 0, len(context)*2)
	for k, v := range context {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(message)
}
