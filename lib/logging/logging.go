/*package logging defines the logger the rest of the code reports progress
through, plus the constructor the CLI uses to build one. Library packages
only depend on the L interface, so tests can pass Nop and the CLI can pass
whatever it likes.*/
package logging

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L accepts logging data. It is the printf-style subset of zap's
// SugaredLogger, which is what New returns, but any logger can match it.
type L interface {
	// Debugf emits a debug-level log.
	Debugf(format string, args ...interface{})
	// Infof emits an info-level log.
	Infof(format string, args ...interface{})
	// Warnf emits a warning-level log.
	Warnf(format string, args ...interface{})
	// Errorf emits an error-level log.
	Errorf(format string, args ...interface{})
}

// Nop is an L instance that does nothing.
var Nop L = nopLogger{ }

// Must ensures that a valid L is available: it returns l unless l is nil,
// in which case it returns Nop.
func Must(l L) L {
	if l != nil { return l }
	return Nop
}

type nopLogger struct{ }

func (nopLogger) Debugf(format string, args ...interface{}) { }
func (nopLogger) Infof(format string, args ...interface{}) { }
func (nopLogger) Warnf(format string, args ...interface{}) { }
func (nopLogger) Errorf(format string, args ...interface{}) { }

// New builds the process logger: console output on stderr, plus, when dir
// is non-empty, a timestamped log file under dir/mice/. level uses the
// numeric convention of the original tool (10 debug, 20 info, 30 warning,
// 40 error); verbose forces debug regardless of level. The returned
// function flushes and closes the sinks and should be deferred by the
// caller.
func New(dir string, level int, verbose bool) (L, func(), error) {
	lvl := zapLevel(level)
	if verbose { lvl = zapcore.DebugLevel }

	encCfg := zap.NewDevelopmentEncoderConfig()
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(os.Stderr), lvl),
	}

	var file *os.File
	if dir != "" {
		logDir := filepath.Join(dir, "mice")
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, nil, err
		}

		name := filepath.Join(logDir,
			time.Now().Format("01-02-2006_15-04-05") + ".log")
		f, err := os.Create(name)
		if err != nil { return nil, nil, err }

		file = f
		cores = append(cores,
			zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg),
				zapcore.Lock(f), lvl))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	cleanup := func() {
		_ = logger.Sync()
		if file != nil { file.Close() }
	}

	return logger.Sugar(), cleanup, nil
}

// zapLevel maps the numeric log levels of the original tool onto zap's.
func zapLevel(level int) zapcore.Level {
	switch {
	case level <= 10: return zapcore.DebugLevel
	case level <= 20: return zapcore.InfoLevel
	case level <= 30: return zapcore.WarnLevel
	}
	return zapcore.ErrorLevel
}
