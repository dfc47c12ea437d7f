package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu          sync.Mutex
	log         *zap.Logger
	sugar       *zap.SugaredLogger
	defaultOnce sync.Once
)

// New builds a zap logger writing to outputPaths, stdout when none are given
// (errors of the logger itself go to stderr).
// env "dev" selects the console encoder with colored levels; anything else is JSON.
func New(env, level string, outputPaths ...string) (*zap.Logger, error) {
	var cfg zap.Config

	if env == "dev" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}
	cfg.OutputPaths = outputPaths
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build(zap.AddCaller())
}

// Init initializes the global logger.
// Environment can be "dev", "uat", or "prod". outputPaths defaults to stdout.
func Init(service, env, level string, outputPaths ...string) {
	logger, err := New(env, level, outputPaths...)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	logger = logger.With(zap.String("service", service))

	mu.Lock()
	log = logger
	sugar = logger.Sugar()
	mu.Unlock()

	logger.Debug("logger initialized",
		zap.String("env", env),
		zap.String("level", level))
}

// L returns the base structured Zap logger, initializing a dev logger on first use.
func L() *zap.Logger {
	defaultOnce.Do(func() {
		mu.Lock()
		initialized := log != nil
		mu.Unlock()
		if !initialized {
			Init("bnet", "dev", "info")
		}
	})
	mu.Lock()
	defer mu.Unlock()
	return log
}

// S returns the Sugared logger (for convenience).
func S() *zap.SugaredLogger {
	_ = L()
	mu.Lock()
	defer mu.Unlock()
	return sugar
}

// Sync flushes any buffered logs (defer this in main()).
func Sync() {
	mu.Lock()
	l := log
	mu.Unlock()
	if l != nil {
		_ = l.Sync()
	}
}
