package observe

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapObserver logs core events through a zap logger. Actions log at info,
// solver passes at debug (they are per-pass and noisy).
type ZapObserver struct {
	log *zap.Logger
}

// NewZap wraps a zap logger as an Observer.
func NewZap(log *zap.Logger) *ZapObserver {
	return &ZapObserver{log: log}
}

func (z *ZapObserver) OnAction(action, detail string) {
	z.log.Info(action, zap.String("detail", detail))
}

func (z *ZapObserver) OnSolverStep(pass int, maxError float64) {
	z.log.Debug("solver pass",
		zap.Int("pass", pass),
		zap.Float64("max_error", maxError))
}

// NewLogger builds a console logger at the named level ("debug", "info",
// "warn", "error"). Unknown levels fall back to info.
func NewLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
