package generator

import (
	"context"
	"strings"

	"github.com/tapforge/clicker-server/internal/dependencies/random"
)

// Suggestion is a generated upgrade idea. Suggestions are flavor only:
// they never enter the authoritative catalog and cannot be purchased.
type Suggestion struct {
	Name        string
	Description string
	BaseCost    int64
	PpsIncrease int64
}

// Generator produces upgrade ideas for the in-game suggestion box.
// Implementations wrap whatever text-generation backend is available.
type Generator interface {
	Generate(ctx context.Context, theme string) (Suggestion, error)
}

// StaticGenerator is a deterministic stand-in for a hosted generation
// service: it assembles suggestions from canned templates.
type StaticGenerator struct {
	random random.Random
}

var _ Generator = (*StaticGenerator)(nil)

// NewStatic creates a StaticGenerator
func NewStatic(random random.Random) *StaticGenerator {
	return &StaticGenerator{random: random}
}

var templates = []struct {
	name        string
	description string
	baseCost    int64
	ppsIncrease int64
}{
	{"%s turbine", "Harvests ambient %s energy around the clock.", 750, 30},
	{"%s collective", "A guild of %s enthusiasts clicking on your behalf.", 1200, 45},
	{"%s reactor", "Converts surplus %s into a steady score drip.", 3000, 120},
	{"%s satellite", "Beams %s-powered score down from orbit.", 8000, 400},
}

// Generate returns a suggestion themed on the given word
func (g *StaticGenerator) Generate(ctx context.Context, theme string) (Suggestion, error) {
	theme = strings.TrimSpace(strings.ToLower(theme))
	if theme == "" {
		theme = "cosmic"
	}

	t := templates[g.random.Intn(len(templates))]
	return Suggestion{
		Name:        strings.Replace(t.name, "%s", theme, 1),
		Description: strings.Replace(t.description, "%s", theme, 1),
		BaseCost:    t.baseCost,
		PpsIncrease: t.ppsIncrease,
	}, nil
}
