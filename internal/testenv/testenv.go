// Package testenv prepares the process environment for tests. It is called
// from TestMain in packages whose code reads API keys at startup, so that
// configuration loading never fails on missing credentials during testing.
package testenv

import (
	"os"
	"path/filepath"
	"runtime"
)

// PlaceholderKey is the dummy credential installed for every provider key
// during tests. Code under test treats it like any other key; no request
// carrying it should ever reach a real provider.
const PlaceholderKey = "test-key"

var root string

func init() {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("testenv: cannot determine caller location")
	}
	// internal/testenv/testenv.go -> repository root
	root = filepath.Dir(filepath.Dir(filepath.Dir(file)))
}

// Setup installs placeholder credentials for the providers the advisor
// engine talks to, unconditionally overwriting any pre-existing values.
// It is idempotent and safe to call from multiple TestMain functions.
func Setup() {
	os.Setenv("OPENAI_API_KEY", PlaceholderKey)
	os.Setenv("ALPHA_VANTAGE_API_KEY", PlaceholderKey)
}

// Root returns the absolute path of the repository root, resolved from this
// file's location. Tests use it to locate repo-relative fixtures.
func Root() string {
	return root
}
