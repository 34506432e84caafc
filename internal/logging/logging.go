// Package logging constructs the process-wide zap logger.
package logging

import (
	"os"

	"go.uber.org/zap"
)

// New returns a production logger, or a development logger when
// ENV=dev.
func New() (*zap.Logger, error) {
	if os.Getenv("ENV") == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
