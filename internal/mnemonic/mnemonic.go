// Package mnemonic builds memory-aid suggestions for names.
package mnemonic

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// Suggester produces randomized mnemonic hints. It favors alliteration:
// trait and activity words that share the name's first letter stick better
// than arbitrary ones.
type Suggester struct {
	rnd *rand.Rand
}

// New returns a Suggester seeded with the current time.
func New() *Suggester {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Suggester with a fixed seed, for reproducible output.
func NewSeeded(seed int64) *Suggester {
	return &Suggester{rnd: rand.New(rand.NewSource(seed))}
}

var traits = []string{
	"ambitious", "breezy", "curious", "daring", "eager", "fearless",
	"gentle", "hasty", "inventive", "jolly", "keen", "lively",
	"merry", "nimble", "observant", "patient", "quirky", "restless",
	"steady", "thoughtful", "upbeat", "vivid", "witty", "youthful", "zesty",
}

var activities = []string{
	"assembles airplanes", "bakes bagels", "collects compasses",
	"draws dragons", "edits encyclopedias", "folds origami ferns",
	"grows gourds", "hums harmonies", "irons igloos", "juggles jars",
	"knits kites", "laminates leaves", "maps mazes", "names nebulae",
	"organizes orchards", "paints pylons", "quotes quasars",
	"races robots", "stacks saucers", "tunes trombones",
	"unravels umbrellas", "varnishes violins", "whistles waltzes",
	"xeroxes xylophones", "yodels yearly", "zips zigzags",
}

var templates = []string{
	"%[1]s the %[2]s one %[3]s",
	"Picture %[1]s: %[2]s, and %[3]s",
	"%[1]s %[3]s whenever %[1]s feels %[2]s",
}

// Suggest builds a hint for the given full name.
func (s *Suggester) Suggest(fullName string) string {
	first := firstWord(fullName)
	if first == "" {
		return ""
	}
	trait := s.pickAlliterative(traits, first)
	activity := s.pickAlliterative(activities, first)
	template := templates[s.rnd.Intn(len(templates))]
	return fmt.Sprintf(template, first, trait, activity)
}

// pickAlliterative prefers candidates starting with the name's first
// letter, falling back to any candidate.
func (s *Suggester) pickAlliterative(candidates []string, name string) string {
	initial := unicode.ToLower([]rune(name)[0])
	matching := make([]string, 0, 4)
	for _, c := range candidates {
		if []rune(c)[0] == initial {
			matching = append(matching, c)
		}
	}
	if len(matching) > 0 {
		return matching[s.rnd.Intn(len(matching))]
	}
	return candidates[s.rnd.Intn(len(candidates))]
}

func firstWord(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, ' '); i >= 0 {
		return name[:i]
	}
	return name
}
