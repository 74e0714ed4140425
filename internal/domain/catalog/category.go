package catalog

import (
	"strings"

	"github.com/go-faster/errors"
)

// ErrUnknownCategory is returned when a category code is not recognised.
var ErrUnknownCategory = errors.New("unknown category")

// Category is a product genre code.
type Category string

const (
	CategoryFPS    Category = "FPS"
	CategoryRPG    Category = "RPG"
	CategoryMOBA   Category = "MOBA"
	CategorySim    Category = "SIM"
	CategoryHorror Category = "HORROR"
	CategoryIndie  Category = "INDIE"
)

// categories lists every category with its human-readable label, in display
// order.
var categories = []struct {
	code  Category
	label string
}{
	{CategoryFPS, "First-Person Shooter"},
	{CategoryRPG, "Role-Playing Game"},
	{CategoryMOBA, "Multiplayer Online Battle Arena"},
	{CategorySim, "Simulation"},
	{CategoryHorror, "Horror"},
	{CategoryIndie, "Indie"},
}

// Categories returns every known category in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		out[i] = c.code
	}
	return out
}

// Label returns the human-readable name of c, or the raw code when c is
// unknown.
func (c Category) Label() string {
	for _, known := range categories {
		if known.code == c {
			return known.label
		}
	}
	return string(c)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range categories {
		if known.code == c {
			return true
		}
	}
	return false
}

// ParseCategory resolves a category code case-insensitively.
func ParseCategory(s string) (Category, error) {
	for _, known := range categories {
		if strings.EqualFold(string(known.code), s) {
			return known.code, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownCategory, "%q", s)
}

// MatchCategories returns the categories whose code or label contains q,
// ignoring case. An empty query matches nothing.
func MatchCategories(q string) []Category {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}
	var out []Category
	for _, known := range categories {
		if strings.Contains(strings.ToLower(known.label), q) ||
			strings.Contains(strings.ToLower(string(known.code)), q) {
			out = append(out, known.code)
		}
	}
	return out
}
