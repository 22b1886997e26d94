package testing

import (
	"os"
	stdtesting "testing"

	_ "github.com/taskhub/taskhub/internal/testing/guard"
)

func init() {
	if os.Getenv("JWT_SECRET") == "" {
		_ = os.Setenv("JWT_SECRET", "test-secret")
	}
}

func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
