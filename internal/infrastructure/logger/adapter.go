package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"study-agent/internal/application/port/output"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ output.LoggerPort = (*ZapAdapter)(nil)

// ZapAdapter пишет JSON-лог в файл ./log/<timestamp>_<task>.log и
// дублирует warn/error в консоль.
type ZapAdapter struct {
	logger *zap.SugaredLogger
	root   *zap.Logger
}

func NewZapAdapter(taskName string) (*ZapAdapter, error) {
	safeName := sanitize(taskName)
	filename := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02_15-04-05"), safeName)

	if err := os.MkdirAll("log", 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	file, err := os.Create(filepath.Join("log", filename))
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(file),
		zapcore.DebugLevel,
	)
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(os.Stderr),
		zapcore.WarnLevel,
	)

	root := zap.New(zapcore.NewTee(fileCore, consoleCore))

	return &ZapAdapter{
		logger: root.Sugar(),
		root:   root,
	}, nil
}

func (l *ZapAdapter) Debug(msg string, args ...any) { l.logger.Debugw(msg, args...) }
func (l *ZapAdapter) Info(msg string, args ...any)  { l.logger.Infow(msg, args...) }
func (l *ZapAdapter) Warn(msg string, args ...any)  { l.logger.Warnw(msg, args...) }
func (l *ZapAdapter) Error(msg string, args ...any) { l.logger.Errorw(msg, args...) }

func (l *ZapAdapter) WithField(key string, value any) output.LoggerPort {
	return &ZapAdapter{
		logger: l.logger.With(key, value),
		root:   l.root,
	}
}

func (l *ZapAdapter) Close() error {
	// Sync на stderr может вернуть ошибку на некоторых платформах — не фатально
	_ = l.root.Sync()
	return nil
}

func sanitize(s string) string {
	result := make([]rune, 0, len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			result = append(result, r)
		} else {
			result = append(result, '_')
		}
	}
	s = string(result)
	if s == "" {
		return "task"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
