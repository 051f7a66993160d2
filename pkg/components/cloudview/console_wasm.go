//go:build js && wasm

package cloudview

import (
	"strings"
	"syscall/js"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// consoleSink writes zap output to the browser console.
type consoleSink struct{}

func (consoleSink) Write(p []byte) (int, error) {
	js.Global().Get("console").Call("log", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func (consoleSink) Sync() error { return nil }

// ConsoleLogger returns a logger printing to the browser console.
func ConsoleLogger(level zapcore.Level) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), consoleSink{}, level)
	return zap.New(core).Named("mindcloud")
}
