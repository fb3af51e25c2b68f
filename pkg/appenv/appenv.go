// Package appenv resolves the runtime environment from APP_ENV.
package appenv

import (
	"os"
	"strings"
)

type Env string

const (
	Production Env = "production"
	Test       Env = "test"
)

// Current reads APP_ENV. Anything that is not explicitly "test" counts as
// production, so a missing or mistyped value can never loosen behavior.
func Current() Env {
	if strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV"))) == string(Test) {
		return Test
	}
	return Production
}

func IsProduction() bool { return Current() == Production }
func IsTest() bool       { return Current() == Test }
