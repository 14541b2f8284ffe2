package utils

import "go.uber.org/zap"

// NewLogger builds the process logger: human-readable in development,
// sampled JSON in production.
func NewLogger(production bool) *zap.Logger {
	var log *zap.Logger
	var err error
	if production {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return log
}
