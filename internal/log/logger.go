package log

import (
	"os"

	"agentmarket/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger(conf *config.Configuration) (*zap.Logger, error) {
	logger := zap.New(
		newCore(conf, zapcore.AddSync(os.Stdout), zapcore.AddSync(os.Stderr)),
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.Fields(
			zap.String("service", conf.App.Name),
			zap.String("env", conf.App.Env),
			zap.String("version", conf.App.Version),
		),
	)
	logger.Info("zap logger initialized", zap.String("level", levelOf(conf).String()), zap.String("format", conf.Log.Format))
	return logger, nil
}

// levelOf 無法解析時退回 info
func levelOf(conf *config.Configuration) zapcore.Level {
	lvl, err := zapcore.ParseLevel(conf.Log.Level)
	if err != nil {
		return zap.InfoLevel
	}
	return lvl
}

// newCore Warn 以下寫 stdout，Warn 以上寫 stderr
func newCore(conf *config.Configuration, stdout, stderr zapcore.WriteSyncer) zapcore.Core {
	threshold := zap.NewAtomicLevelAt(levelOf(conf))

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.MessageKey = "message"
	encCfg.TimeKey = "ts"
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if conf.Log.Format == "console" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	return zapcore.NewTee(
		zapcore.NewCore(encoder, stdout, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return threshold.Enabled(l) && l < zapcore.WarnLevel
		})),
		zapcore.NewCore(encoder, stderr, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return threshold.Enabled(l) && l >= zapcore.WarnLevel
		})),
	)
}
