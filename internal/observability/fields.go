package observability

import "go.uber.org/zap"

// Field constructors re-exported so callers only import this package for logging.
//
//nolint:gochecknoglobals // Aliases of zap constructors
var (
	String   = zap.String
	Int      = zap.Int
	Int64    = zap.Int64
	Float64  = zap.Float64
	Bool     = zap.Bool
	Error    = zap.Error
	Duration = zap.Duration
	Any      = zap.Any
)
