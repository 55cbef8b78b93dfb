package logger

import (
	"go.uber.org/zap"
)

// Logger is a thin key/value facade over zap used by every layer of the service.
type Logger struct {
	z *zap.SugaredLogger
}

func NewLogger(development bool) (*Logger, error) {
	var (
		z   *zap.Logger
		err error
	)
	if development {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return &Logger{z: z.Sugar()}, nil
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{z: l.z.With(keysAndValues...)}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.z.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.z.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.z.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.z.Errorw(msg, keysAndValues...)
}

func (l *Logger) Sync() error {
	return l.z.Sync()
}
