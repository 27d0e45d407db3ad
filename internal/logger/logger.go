package logger

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Log is a no-op until Init runs so packages can log from tests
var Log = zap.NewNop()

func Init() {
	viper.SetDefault("log.development", false)

	if viper.GetBool("log.development") {
		Log = zap.Must(zap.NewDevelopment())
		return
	}
	Log = zap.Must(zap.NewProduction())
}

func Sugar() *zap.SugaredLogger {
	return Log.Sugar()
}

func Sync() {
	_ = Log.Sync()
}
