package contract

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// verboseLogger is the diagnostics logger. It stays a no-op unless
// verbose mode is enabled, so informational noise never reaches normal
// or quiet runs.
var verboseLogger = zap.NewNop()

// InitVerboseLogging replaces the no-op logger with a console logger
// writing to stderr. Called once during CLI setup when --verbose is set.
func InitVerboseLogging() {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = "" // single-shot tool, timestamps add no signal
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		zapcore.DebugLevel,
	)
	verboseLogger = zap.New(core)
}

// Verbose returns the diagnostics logger.
func Verbose() *zap.Logger {
	return verboseLogger
}
