// Package guard switches the process into test mode when imported.
package guard

import (
	"os"
	"sync"
)

// EnvVar is the variable checked by app.InTestMode.
const EnvVar = "TASKHUB_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(EnvVar) == "" {
			_ = os.Setenv(EnvVar, "1")
		}
		if os.Getenv("OTEL_ENABLED") == "" {
			_ = os.Setenv("OTEL_ENABLED", "false")
		}
	})
}
