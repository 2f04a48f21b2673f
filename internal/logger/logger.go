package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aliskhannn/vocab-cards-bot/internal/config"
)

// New builds the application logger: JSON output in production,
// colored console output with debug level everywhere else.
func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Env == "production" {
		return zap.NewProduction(zap.Fields(zap.String("app", "vocab-cards-bot")))
	}

	zc := zap.NewDevelopmentConfig()
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zc.Build()
}
