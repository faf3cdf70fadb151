// Package guard switches the process into test mode when a test package
// imports it, so app wiring skips rate limits and cron registration.
package guard

import (
	"os"
	"sync"
)

const envVar = "DISPATCH_TEST_MODE"

var once sync.Once

func init() {
	Enable()
}

// Enable sets the test mode flag unless the environment already decided.
func Enable() {
	once.Do(func() {
		if os.Getenv(envVar) == "" {
			_ = os.Setenv(envVar, "1")
		}
	})
}
