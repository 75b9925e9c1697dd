package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/qrlogo/qrlogo/pkg/logger/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Log     *types.Logger
	logHook types.LogHook
)

// Config represents configuration options for logger initialization
type Config struct {
	Debug        bool           // Enable debug logging
	TimeLocation *time.Location // Time zone of the timestamps (default: local)
	LogToFile    bool           // Enable logging to a file
	LogsDir      string         // Directory for log files, relative to the working directory
	Output       io.Writer      // Console output (default: stderr, stdout is for command output)
}

// SetLogHook sets a hook function that will be called for each log entry
func SetLogHook(hook types.LogHook) {
	logHook = hook
}

// Init is a function to initialize logger with extended configuration
func Init(config Config) error {
	var l types.Logger
	l.Name = "qrlogo"

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "timestamp",
		NameKey:        "logger",
		CallerKey:      "caller",
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     timeEncoder(config.TimeLocation),
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	level := zapcore.InfoLevel
	if config.Debug {
		level = zapcore.DebugLevel
	}

	output := config.Output
	if output == nil {
		output = os.Stderr
	}

	// Console encoder with colors
	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(output)), level),
	}

	// File encoder without colors
	if config.LogToFile {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		l.LogsPath = filepath.Join(wd, config.LogsDir)
		if err = os.MkdirAll(l.LogsPath, os.ModePerm); err != nil {
			return err
		}

		logPath := filepath.Join(l.LogsPath, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02_15-04")))
		fileWriter, errOpenFile := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if errOpenFile != nil {
			return errOpenFile
		}

		fileEncoderConfig := encoderConfig
		fileEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(fileWriter), level))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.Hooks(func(entry zapcore.Entry) error {
		if logHook != nil {
			logHook(types.Log{
				Timestamp:  entry.Time,
				Caller:     entry.Caller.String(),
				LoggerName: entry.LoggerName,
				Level:      entry.Level,
				Message:    entry.Message,
			})
		}
		return nil
	}))

	l.SugaredLogger = log.Named(l.Name).Sugar()
	Log = &l

	return nil
}

// Named returns a new logger with the specified name ("history", "qr", etc.)
func Named(name string) (*types.Logger, error) {
	if Log == nil {
		return nil, fmt.Errorf("logger is not initialized")
	}
	return &types.Logger{
		SugaredLogger: Log.SugaredLogger.Named(name),
		LogsPath:      Log.LogsPath,
		Name:          name,
	}, nil
}

// Sync flushes buffered entries; call before exiting.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

func timeEncoder(loc *time.Location) zapcore.TimeEncoder {
	if loc == nil {
		loc = time.Local
	}
	return func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.In(loc).Format("2006-01-02 15:04:05"))
	}
}
