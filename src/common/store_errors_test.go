package common

import (
	"fmt"
	"testing"
)

func TestIsStore(t *testing.T) {
	err := NewStoreErr("AtomLog", Rejected, "addr")

	if !IsStore(err, Rejected) {
		t.Fatal("expected Rejected")
	}

	if IsStore(err, Closed) {
		t.Fatal("Rejected is not Closed")
	}

	wrapped := fmt.Errorf("loading: %w", err)
	if !IsStore(wrapped, Rejected) {
		t.Fatal("wrapped error should still match")
	}

	if IsStore(fmt.Errorf("other"), Rejected) {
		t.Fatal("plain error should not match")
	}
}
