package logger

import (
	"log/slog"
	"os"
)

// AppLoggerはアプリケーション全体で使うロガーのインターフェースです。
// 引数はslogと同じキーと値のペアです。
type AppLogger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type appLogger struct {
	logger *slog.Logger
}

func NewAppLogger(logger *slog.Logger) AppLogger {
	return &appLogger{
		logger: logger,
	}
}

// NewDefaultは標準出力へのテキスト形式ロガーを返します。
func NewDefault() AppLogger {
	return NewAppLogger(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func (l *appLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *appLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *appLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}
