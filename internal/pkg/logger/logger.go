package logger

import "go.uber.org/zap"

// New returns a development logger for local runs and a production JSON
// logger otherwise.
func New(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
