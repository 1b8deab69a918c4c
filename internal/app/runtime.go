package app

import (
	"os"
	"sync"
)

// TestModeEnv is set by the testing package so binaries imported from tests
// skip listeners and outbound connections.
const TestModeEnv = "VIVIONIX_TEST_MODE"

// InTestMode reports whether TestModeEnv was "1" when first checked.
var InTestMode = sync.OnceValue(func() bool {
	return os.Getenv(TestModeEnv) == "1"
})
