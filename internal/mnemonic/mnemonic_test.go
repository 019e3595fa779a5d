package mnemonic

import (
	"strings"
	"testing"
)

func TestSuggestUsesFirstName(t *testing.T) {
	s := NewSeeded(1)
	hint := s.Suggest("Jane Doe")
	if hint == "" {
		t.Fatalf("expected a hint")
	}
	if !strings.Contains(hint, "Jane") {
		t.Fatalf("hint should mention the first name: %q", hint)
	}
	if strings.Contains(hint, "Doe") {
		t.Fatalf("hint should not leak the last name: %q", hint)
	}
}

func TestSuggestAlliterates(t *testing.T) {
	s := NewSeeded(42)
	for i := 0; i < 20; i++ {
		hint := strings.ToLower(s.Suggest("Jane Doe"))
		if !strings.Contains(hint, "jolly") && !strings.Contains(hint, "juggles jars") {
			t.Fatalf("expected a j-alliteration for Jane, got %q", hint)
		}
	}
}

func TestSuggestEmptyName(t *testing.T) {
	s := NewSeeded(1)
	if hint := s.Suggest("   "); hint != "" {
		t.Fatalf("blank name should produce no hint, got %q", hint)
	}
}
