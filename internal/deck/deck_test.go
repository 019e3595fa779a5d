package deck

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleDeck = `name = "platform-team"

[[card]]
name = "Jane Doe"
nicknames = ["janie"]
photo = "photos/jane.png"
mnemonic = "Jane juggles jars"

[[card]]
id = "custom-id"
name = "John Smith"

[[card]]
name = "Ana Gomez"
photo = "photos/missing.png"
`

func writeDeck(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "platform-team.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write deck: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "photos"), 0o755); err != nil {
		t.Fatalf("mkdir photos: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "photos", "jane.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("write photo: %v", err)
	}
	return path
}

func TestLoadDeck(t *testing.T) {
	path := writeDeck(t, sampleDeck)
	d, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Name != "platform-team" {
		t.Fatalf("deck name = %q", d.Name)
	}
	if len(d.Cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(d.Cards))
	}
	if d.Cards[0].ID != "jane-doe" {
		t.Fatalf("default id should be a slug, got %q", d.Cards[0].ID)
	}
	if d.Cards[1].ID != "custom-id" {
		t.Fatalf("explicit id should win, got %q", d.Cards[1].ID)
	}
	if !filepath.IsAbs(d.Cards[0].Photo) {
		t.Fatalf("photo path should resolve relative to the deck file: %q", d.Cards[0].Photo)
	}
}

func TestLoadDeckRequiresNames(t *testing.T) {
	path := writeDeck(t, "[[card]]\nphoto = \"x.png\"\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("cards without names should fail to load")
	}
}

func TestEligibleRequiresExistingPhoto(t *testing.T) {
	path := writeDeck(t, sampleDeck)
	d, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	eligible := Eligible(d.Cards)
	if len(eligible) != 1 {
		t.Fatalf("expected only the card with a real photo, got %d", len(eligible))
	}
	if eligible[0].Name != "Jane Doe" {
		t.Fatalf("unexpected eligible card %q", eligible[0].Name)
	}
}

func TestListDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"beta.toml", "alpha.toml", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("name = \"x\""), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	names, err := ListDir(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Fatalf("unexpected deck list: %v", names)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Jane Doe", "jane-doe"},
		{"Ana-María López", "ana-mar-a-l-pez"},
		{"Cher", "cher"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
