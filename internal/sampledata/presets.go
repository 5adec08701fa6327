package sampledata

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"griddemo/pkg/records"
)

// Preset describes one of the named demonstration datasets.
type Preset struct {
	Name  string
	Count int // rows to generate; ignored for the tree preset
	Tree  bool

	// Error marks presets that exist to exercise the row-count guard.
	Error bool
}

// Label returns the button caption shown by the front end,
// e.g. "Medium (1,000 rows)".
func (p Preset) Label() string {
	if p.Tree {
		return "Tree Data"
	}
	pr := message.NewPrinter(language.AmericanEnglish)
	title := p.Name
	switch p.Name {
	case "tooLarge":
		title = "Too Large"
	default:
		if title != "" {
			title = strings.ToUpper(title[:1]) + title[1:]
		}
	}
	if p.Error {
		return pr.Sprintf("%s (%d rows - Error)", title, p.Count)
	}
	return pr.Sprintf("%s (%d rows)", title, p.Count)
}

// Build materializes the preset. Random presets draw from g; a nil g uses a
// freshly seeded generator.
func (p Preset) Build(g *Generator) records.Dataset {
	if p.Tree {
		return TreeDataset()
	}
	if g == nil {
		g = NewGenerator()
	}
	ds := g.Generate(p.Count)
	ds.Name = p.Name
	return ds
}

var presets = []Preset{
	{Name: "small", Count: 100},
	{Name: "medium", Count: 1000},
	{Name: "large", Count: 10000},
	{Name: "tooLarge", Count: 30000, Error: true},
	{Name: TreeName, Tree: true},
}

// DefaultPreset is the dataset selected when the front end first loads.
const DefaultPreset = "medium"

// Presets returns the demonstration presets in display order.
func Presets() []Preset {
	return append([]Preset(nil), presets...)
}

// LookupPreset finds a preset by name.
func LookupPreset(name string) (Preset, error) {
	for _, p := range presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("sampledata: unknown preset %q", name)
}
