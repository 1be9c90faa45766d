package diag

import (
	"context"

	"github.com/pavelchuchma/vkct/pkg/logger"
)

// LogSink writes diagnostics to a structured logger.
type LogSink struct {
	Log logger.Logger
}

// NewLogSink returns a sink logging through l.
func NewLogSink(l logger.Logger) *LogSink {
	return &LogSink{Log: l}
}

// Report logs d at the level matching its severity.
func (s *LogSink) Report(d Diagnostic) {
	ctx := context.Background()
	fields := []logger.Field{logger.String("code", d.Code)}
	if !d.Location.IsZero() {
		fields = append(fields,
			logger.String("file", d.Location.File),
			logger.String("sheet", d.Location.Sheet),
			logger.Int("row", d.Location.Row),
		)
	}

	switch d.Severity {
	case Error:
		s.Log.Error(ctx, d.Message, fields...)
	case Warning:
		s.Log.Warn(ctx, d.Message, fields...)
	default:
		s.Log.Info(ctx, d.Message, fields...)
	}
}
