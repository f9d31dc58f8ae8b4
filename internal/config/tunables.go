// Package config holds the engine's tunables, generalizing the flat
// const.go files the raid simulator used into a small typed struct the
// driver and CLI both read from.
package config

import "time"

const (
	LogLevelDebug   string = "debug"
	LogLevelInfo    string = "info"
	LogLevelWarning string = "warn"
	LogLevelError   string = "error"
)

// Version is the engine's reported version.
const Version = "0.1.0"

// CreditsCapMax is the hard ceiling spec.md §5 places on extents
// accumulated into a single open stripe before forcing a reconcile.
const CreditsCapMax = 1024

// Tunables bounds the engine's resource usage and timing behavior.
type Tunables struct {
	// CreditsCap bounds extents buffered into one open stripe before the
	// driver forces a reconcile, even mid-stripe.
	CreditsCap int

	// WorkerPoolSize bounds concurrent offloaded jobs (encode, peer RPC,
	// hole-fill) in the xstream helper pool.
	WorkerPoolSize int

	// RPCTimeout bounds a single peer RPC; expiry surfaces as a
	// per-stripe failure.
	RPCTimeout time.Duration

	// LogLevel is the logrus level name (see LogLevel* constants).
	LogLevel string
}

// Default returns the engine's default tunables.
func Default() Tunables {
	return Tunables{
		CreditsCap:     CreditsCapMax,
		WorkerPoolSize: 8,
		RPCTimeout:     30 * time.Second,
		LogLevel:       LogLevelInfo,
	}
}

// Option mutates a Tunables in place.
type Option func(*Tunables)

// WithCreditsCap overrides CreditsCap, clamped to CreditsCapMax.
func WithCreditsCap(n int) Option {
	return func(t *Tunables) {
		if n <= 0 || n > CreditsCapMax {
			n = CreditsCapMax
		}
		t.CreditsCap = n
	}
}

// WithWorkerPoolSize overrides WorkerPoolSize.
func WithWorkerPoolSize(n int) Option {
	return func(t *Tunables) {
		if n > 0 {
			t.WorkerPoolSize = n
		}
	}
}

// WithRPCTimeout overrides RPCTimeout.
func WithRPCTimeout(d time.Duration) Option {
	return func(t *Tunables) {
		if d > 0 {
			t.RPCTimeout = d
		}
	}
}

// WithLogLevel overrides LogLevel.
func WithLogLevel(level string) Option {
	return func(t *Tunables) { t.LogLevel = level }
}

// New builds Tunables from Default with the given options applied.
func New(opts ...Option) Tunables {
	t := Default()
	for _, opt := range opts {
		opt(&t)
	}
	return t
}
