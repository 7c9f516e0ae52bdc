package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestConfigure_IgnoresZeroValues(t *testing.T) {
	defer Reset()

	Configure(Config{Short: 7 * time.Second})

	got := Current()
	if got.Short != 7*time.Second {
		t.Errorf("Short: got %v, want %v", got.Short, 7*time.Second)
	}
	if got.Medium != DefaultMedium {
		t.Errorf("Medium: got %v, want default %v", got.Medium, DefaultMedium)
	}
	if got.Long != DefaultLong {
		t.Errorf("Long: got %v, want default %v", got.Long, DefaultLong)
	}
}

func TestReset(t *testing.T) {
	Configure(Config{Ping: time.Minute, Long: time.Hour})
	Reset()

	if Ping() != DefaultPing || Long() != DefaultLong {
		t.Errorf("expected defaults after Reset, got %+v", Current())
	}
}

func TestWithTimeout_Expires(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("expected context to expire")
	}
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("expected DeadlineExceeded, got %v", ctx.Err())
	}
}
