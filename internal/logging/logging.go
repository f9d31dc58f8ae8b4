// Package logging initializes logrus for the aggregation engine,
// generalizing the raid simulator's InitLogger helper.
package logging

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Anthya1104/ecagg/internal/config"
)

// Init configures the package-level logrus logger from a level name (one
// of config.LogLevel*).
func Init(level string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("logging: invalid log level %q: %w", level, err)
	}
	logrus.SetLevel(parsed)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

// Default initializes logging at config.LogLevelInfo, for callers (tests,
// the demo CLI) that don't need to thread a level through.
func Default() {
	_ = Init(config.LogLevelInfo)
}

// WithStripe returns a logrus entry pre-populated with the fields almost
// every per-stripe log line in the reconciler needs.
func WithStripe(oid fmt.Stringer, stripenum uint64) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"oid":       oid.String(),
		"stripenum": stripenum,
	})
}
