package logger

import "go.uber.org/zap"

// buildFields converts the optional error and field maps into zap fields.
func buildFields(err error, fields ...map[string]interface{}) []zap.Field {
	zapFields := make([]zap.Field, 0, 8)

	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}

	for _, m := range fields {
		for k, v := range m {
			zapFields = append(zapFields, zap.Any(k, v))
		}
	}

	return zapFields
}

// Debug logs a debug-level message with an optional error and additional fields.
func (l *LoggerClient) Debug(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Debug(msg, buildFields(err, fields...)...)
}

// Info logs an informational message with an optional error and additional fields.
func (l *LoggerClient) Info(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Info(msg, buildFields(err, fields...)...)
}

// Warn logs a warning message with an optional error and additional fields.
func (l *LoggerClient) Warn(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Warn(msg, buildFields(err, fields...)...)
}

// Error logs an error message with the associated error and optional additional fields.
func (l *LoggerClient) Error(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Error(msg, buildFields(err, fields...)...)
}

// Fatal logs a critical message and terminates the process.
func (l *LoggerClient) Fatal(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Fatal(msg, buildFields(err, fields...)...)
}
