// Package logflags configures the zap logger of a command from flags.
package logflags

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Flags struct {
	Level      zapcore.Level
	Format     string
	Path       string
	MaxSize    int
	MaxAge     int
	MaxBackups int
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	f.Level = zapcore.WarnLevel
	fs.Var(&f.Level, "log.level", "logging level [debug,info,warn,error]")
	fs.StringVar(&f.Format, "log.format", "console", "log encoding [console,json]")
	fs.StringVar(&f.Path, "log.path", "", "path to a rotated log file (default stderr)")
	fs.IntVar(&f.MaxSize, "log.maxsize", 100, "megabytes written to log.path before it is rotated")
	fs.IntVar(&f.MaxAge, "log.maxage", 0, "days to keep rotated log files (0=forever)")
	fs.IntVar(&f.MaxBackups, "log.maxbackups", 0, "rotated log files to keep (0=all)")
}

func (f *Flags) encoder() (zapcore.Encoder, error) {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	switch f.Format {
	case "console":
		return zapcore.NewConsoleEncoder(cfg), nil
	case "json":
		return zapcore.NewJSONEncoder(cfg), nil
	}
	return nil, fmt.Errorf("unknown log format: %q", f.Format)
}

// Open returns the logger described by f.  When a log path is set, output
// goes to a lumberjack rotating file, which is closed by the returned
// cleanup function.
func (f *Flags) Open() (*zap.Logger, func(), error) {
	enc, err := f.encoder()
	if err != nil {
		return nil, nil, err
	}
	if f.MaxSize < 0 || f.MaxAge < 0 || f.MaxBackups < 0 {
		return nil, nil, errors.New("log rotation limits must not be negative")
	}
	var ws zapcore.WriteSyncer
	cleanup := func() {}
	if f.Path == "" {
		ws = zapcore.Lock(os.Stderr)
	} else {
		rotator := &lumberjack.Logger{
			Filename:   f.Path,
			MaxSize:    f.MaxSize,
			MaxAge:     f.MaxAge,
			MaxBackups: f.MaxBackups,
		}
		ws = zapcore.AddSync(rotator)
		cleanup = func() { rotator.Close() }
	}
	logger := zap.New(zapcore.NewCore(enc, ws, f.Level))
	return logger, func() {
		logger.Sync()
		cleanup()
	}, nil
}
