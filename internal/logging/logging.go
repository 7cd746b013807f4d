// Package logging constructs the gateway's zap.Logger, adapted from
// pkg/utils/logging.go's NewLogger("dev"|"prod"|default) shape.
package logging

import "go.uber.org/zap"

// Package-level constructor vars so tests can stub out zap's own
// constructors without touching real stdout/stderr, mirroring
// pkg/utils/logging_test.go.
var (
	zapNewDevelopment = zap.NewDevelopment
	zapNewProduction  = zap.NewProduction
	zapNewNop         = zap.NewNop
)

// New builds a logger for env: "dev"/"development" gets zap's human-
// readable development config; "prod"/"production" gets zap's structured
// production config; anything else gets a no-op logger.
func New(env string) (*zap.Logger, error) {
	switch env {
	case "dev", "development":
		return zapNewDevelopment()
	case "prod", "production":
		return zapNewProduction()
	default:
		return zapNewNop(), nil
	}
}
