package typeid

import (
	"strings"
	"testing"
)

func TestNewIDsArePrefixedAndUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		for _, id := range []string{NewLayerID(), NewDrawID()} {
			if seen[id] {
				t.Fatalf("duplicate id %q", id)
			}
			seen[id] = true
		}
	}

	if id := NewLayerID(); !strings.HasPrefix(id, PrefixLayer+"_") {
		t.Errorf("layer id %q lacks prefix", id)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(NewDrawID(), PrefixDraw); err != nil {
		t.Errorf("valid draw id rejected: %v", err)
	}
	if err := Validate(NewDrawID(), PrefixLayer); err == nil {
		t.Error("expected prefix mismatch error")
	}
	if err := Validate("not an id", PrefixLayer); err == nil {
		t.Error("expected parse error")
	}
}
