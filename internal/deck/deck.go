// Package deck loads card decks from TOML files.
package deck

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/facecards/internal/model"
)

type deckFile struct {
	Name  string     `toml:"name"`
	Cards []cardFile `toml:"card"`
}

type cardFile struct {
	ID        string   `toml:"id"`
	Name      string   `toml:"name"`
	Nicknames []string `toml:"nicknames"`
	Photo     string   `toml:"photo"`
	Mnemonic  string   `toml:"mnemonic"`
}

// Load reads a deck from a TOML file. Photo paths are resolved relative to
// the deck file's directory.
func Load(path string) (model.Deck, error) {
	var df deckFile
	if _, err := toml.DecodeFile(path, &df); err != nil {
		return model.Deck{}, fmt.Errorf("failed to decode deck: %w", err)
	}
	name := df.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	dir := filepath.Dir(path)
	cards := make([]model.Card, 0, len(df.Cards))
	for i, cf := range df.Cards {
		fullName := strings.TrimSpace(cf.Name)
		if fullName == "" {
			return model.Deck{}, fmt.Errorf("card %d in %s has no name", i+1, path)
		}
		id := cf.ID
		if id == "" {
			id = slugify(fullName)
		}
		photo := cf.Photo
		if photo != "" && !filepath.IsAbs(photo) {
			photo = filepath.Join(dir, photo)
		}
		cards = append(cards, model.Card{
			ID:        id,
			Name:      fullName,
			Nicknames: cf.Nicknames,
			Photo:     photo,
			Mnemonic:  cf.Mnemonic,
		})
	}
	return model.Deck{Name: name, Path: path, Cards: cards}, nil
}

// ListDir returns the deck names available in a directory, sorted.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".toml") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".toml"))
	}
	sort.Strings(names)
	return names, nil
}

// Eligible filters to cards that can be practiced: the card must carry a
// photo reference and the file must exist.
func Eligible(cards []model.Card) []model.Card {
	out := make([]model.Card, 0, len(cards))
	for _, c := range cards {
		if c.Photo == "" {
			continue
		}
		if _, err := os.Stat(c.Photo); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

func slugify(name string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash && b.Len() > 0 {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
