package xid

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewIsPrefixedAndUnique(t *testing.T) {
	a, b := New("tok"), New("tok")
	if a == b {
		t.Fatalf("expected distinct ids, got %q twice", a)
	}
	if !strings.HasPrefix(a, "tok-") {
		t.Fatalf("missing prefix: %q", a)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(a, "tok-")); err != nil {
		t.Fatalf("suffix is not a uuid: %v", err)
	}
}
