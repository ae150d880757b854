package boost

import (
	"errors"
	"fmt"
	"testing"
)

func TestError(t *testing.T) {
	err := NewError(ErrClaimFailed, "tx 0x01 reverted")
	if err.Error() != "claim failed: tx 0x01 reverted" {
		t.Fatalf("wrong message %q", err)
	}
	wrapped := fmt.Errorf("claiming: %w", err)
	if !errors.Is(wrapped, ErrClaimFailed) {
		t.Fatal("wrapped error doesn't match its kind")
	}
	if errors.Is(wrapped, ErrReplayed) {
		t.Fatal("error matches the wrong kind")
	}
	var e Error
	if !errors.As(wrapped, &e) || e.Detail() != "tx 0x01 reverted" {
		t.Fatalf("errors.As failed or wrong detail %q", e.Detail())
	}
	if msg := NewError(ErrReverted, "").Error(); msg != "execution reverted" {
		t.Fatalf("wrong message without detail %q", msg)
	}
}
