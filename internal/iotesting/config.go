// Package iotesting provides shared test utilities for integration tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"github.com/clindict/omopstat/pkg/config"
)

// GetTestConfig returns a configuration suitable for integration
// tests: an in-memory SQLite database so tests never touch a
// production OMOP instance, a single worker for deterministic
// execution, and logs to stderr.
func GetTestConfig() *config.Config {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptDatabaseDriver("sqlite"),
		config.OptDatabasePath(":memory:"),
		config.OptLogDestination("stderr"),
		config.OptJobsNumber(1),
	})
	return cfg
}
