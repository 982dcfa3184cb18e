// Package logger builds the zap loggers used by the commands.
// Entries go to a console core on stderr and, when a file name is configured,
// to a rotating file core.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Off disables a core when used as its level.
const Off = "off"

// Config for log output.
type Config struct {
	Level      string `env:"LEVEL" envDefault:"info" yaml:"level"`     // file level
	Console    string `env:"CONSOLE" envDefault:"info" yaml:"console"` // console level
	Filename   string `env:"FILE" yaml:"file"`
	MaxSize    int    `env:"MAX_SIZE" envDefault:"100" yaml:"max_size"` // megabytes
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"3" yaml:"max_backups"`
	MaxAge     int    `env:"MAX_AGE" envDefault:"28" yaml:"max_age"` // days
	Format     string `env:"FORMAT" envDefault:"json" yaml:"format"` // file format: json or text
}

// New creates a logger writing to stderr and the configured file.
func New(cfg Config) (*zap.Logger, error) {
	return build(cfg, zapcore.Lock(os.Stderr), isatty.IsTerminal(os.Stderr.Fd()))
}

// MustNew works like New but panics on error.
func MustNew(cfg Config) *zap.Logger {
	log, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return log
}

func build(cfg Config, console zapcore.WriteSyncer, color bool) (*zap.Logger, error) {
	cores := make([]zapcore.Core, 0, 2)

	if cfg.Console != Off {
		level, err := parseLevel(cfg.Console)
		if err != nil {
			return nil, fmt.Errorf("console level: %w", err)
		}
		cores = append(cores, zapcore.NewCore(createEncoder("text", true, color), console, level))
	}

	if cfg.Filename != "" && cfg.Level != Off {
		level, err := parseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("file level: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			createEncoder(cfg.Format, false, false),
			zapcore.AddSync(rotating(cfg)),
			level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func rotating(cfg Config) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		LocalTime:  true,
	}
}

func parseLevel(text string) (zapcore.Level, error) {
	if text == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(text)); err != nil {
		return level, err
	}
	return level, nil
}

func createEncoder(format string, isConsole, color bool) zapcore.Encoder {
	var cfg zapcore.EncoderConfig
	if isConsole {
		cfg = zap.NewDevelopmentEncoderConfig()
	} else {
		cfg = zap.NewProductionEncoderConfig()
		cfg.CallerKey = "func"
	}
	cfg.EncodeTime = timeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	if color {
		cfg.EncodeLevel = zapcore.LowercaseColorLevelEncoder
	}
	cfg.EncodeDuration = zapcore.SecondsDurationEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder

	if format == "json" {
		return zapcore.NewJSONEncoder(cfg)
	}
	return zapcore.NewConsoleEncoder(cfg)
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format(time.RFC3339))
}
