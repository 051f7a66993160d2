// Package observability builds the zap loggers used across mindcloud.
package observability

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/recera/mindcloud/internal/config"
)

var colorAttrs = map[string]color.Attribute{
	"black":   color.FgBlack,
	"red":     color.FgRed,
	"green":   color.FgGreen,
	"yellow":  color.FgYellow,
	"blue":    color.FgBlue,
	"magenta": color.FgMagenta,
	"cyan":    color.FgCyan,
	"white":   color.FgWhite,
}

// New builds a logger writing to stderr, plus a rotated JSON file when
// cfg.LogFile is set.
func New(cfg config.LoggerConfig) *zap.Logger {
	return NewWithWriter(cfg, zapcore.Lock(os.Stderr))
}

// NewWithWriter is New with the console output sent to w.
func NewWithWriter(cfg config.LoggerConfig, w zapcore.WriteSyncer) *zap.Logger {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zap.InfoLevel)
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder(cfg), w, level)}
	if cfg.LogFile != "" {
		cores = append(cores, zapcore.NewCore(
			encoder(config.LoggerConfig{Format: "json"}),
			zapcore.AddSync(RotatingFile(cfg)),
			level,
		))
	}

	opts := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
	if cfg.AddSource {
		opts = append(opts, zap.AddCaller())
	}
	logger := zap.New(zapcore.NewTee(cores...), opts...)
	if cfg.ServiceName != "" {
		logger = logger.Named(cfg.ServiceName)
	}
	return logger
}

// RotatingFile returns the lumberjack writer for cfg.LogFile.
func RotatingFile(cfg config.LoggerConfig) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}

// Install makes logger the zap global and routes the standard library log
// package through it. The returned func undoes both.
func Install(logger *zap.Logger) func() {
	undoGlobals := zap.ReplaceGlobals(logger)
	undoStd := zap.RedirectStdLog(logger)
	return func() {
		undoStd()
		undoGlobals()
	}
}

// Sync flushes logger, reporting failures on stderr. Syncing a terminal
// fails on some platforms; that error is ignored.
func Sync(logger *zap.Logger) {
	if err := logger.Sync(); err != nil && !strings.Contains(err.Error(), "inappropriate ioctl") &&
		!strings.Contains(err.Error(), "invalid argument") {
		fmt.Fprintln(os.Stderr, "mindcloud: failed to sync logger:", err)
	}
}

func encoder(cfg config.LoggerConfig) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Format == "json" {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = levelEncoder(cfg.Colors)
	return zapcore.NewConsoleEncoder(ec)
}

// levelEncoder colours the level name per cfg. Colour is dropped when
// fatih/color decides the output is not a terminal or NO_COLOR is set.
func levelEncoder(colors config.ColorConfig) zapcore.LevelEncoder {
	byLevel := map[zapcore.Level]string{
		zapcore.DebugLevel:  colors.Debug,
		zapcore.InfoLevel:   colors.Info,
		zapcore.WarnLevel:   colors.Warn,
		zapcore.ErrorLevel:  colors.Error,
		zapcore.DPanicLevel: colors.Error,
		zapcore.PanicLevel:  colors.Fatal,
		zapcore.FatalLevel:  colors.Fatal,
	}
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		name := l.CapitalString()
		attr, ok := colorAttrs[byLevel[l]]
		if !ok || color.NoColor {
			enc.AppendString(name)
			return
		}
		c := color.New(attr)
		c.EnableColor()
		enc.AppendString(c.Sprint(name))
	}
}
