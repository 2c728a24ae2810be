// Package logger provides a zap-based application logger.
package logger

import "go.uber.org/zap"

// Log is the global zap logger used across the project. It defaults to a
// no-op logger so library code and tests can log without Init.
var Log = zap.NewNop()

// Init configures the global logger in production mode, tagging every
// entry with the service name.
func Init(service string) {
	log, err := zap.NewProduction(zap.Fields(zap.String("service", service)))
	if err != nil {
		panic(err)
	}
	Log = log
}
