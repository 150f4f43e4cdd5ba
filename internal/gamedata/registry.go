package gamedata

import (
	"errors"
	"fmt"
)

// LabelDef defines one entry of the label picker loaded from JSON.
type LabelDef struct {
	Label string `json:"label"` // Single display character, empty for "no label"
	Name  string `json:"name"`  // Description shown next to the character
}

// Display returns the picker row text, e.g. "↑ (Stairs - Up)".
func (l LabelDef) Display() string {
	glyph := l.Label
	if glyph == "" {
		glyph = " "
	}
	return fmt.Sprintf("%s (%s)", glyph, l.Name)
}

// LabelsFile represents the structure of labels.json.
type LabelsFile struct {
	Labels []LabelDef `json:"labels"`
}

// LoadLabels loads label definitions from the embedded labels.json file.
func LoadLabels() ([]LabelDef, error) {
	file, err := Load[LabelsFile]("labels.json")
	if err != nil {
		return nil, err
	}
	return file.Labels, nil
}

// LabelRegistry holds the enumerated label choices in display order.
type LabelRegistry struct {
	labels []LabelDef
	index  map[string]int
}

// NewLabelRegistry creates a registry from loaded label definitions.
func NewLabelRegistry(labels []LabelDef) *LabelRegistry {
	registry := &LabelRegistry{
		labels: labels,
		index:  make(map[string]int, len(labels)),
	}
	for i := range labels {
		registry.index[labels[i].Label] = i
	}
	return registry
}

// LoadLabelRegistry loads and creates a registry from the embedded labels.json.
func LoadLabelRegistry() (*LabelRegistry, error) {
	labels, err := LoadLabels()
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, errors.New("no labels loaded from labels.json")
	}
	return NewLabelRegistry(labels), nil
}

// MustLoadLabelRegistry loads a registry, panicking on error.
func MustLoadLabelRegistry() *LabelRegistry {
	registry, err := LoadLabelRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// IndexOf returns the position of the given label character, or 0 ("no label") if unknown.
func (r *LabelRegistry) IndexOf(label string) int {
	if i, ok := r.index[label]; ok {
		return i
	}
	return 0
}

// At returns the label definition at position i.
func (r *LabelRegistry) At(i int) LabelDef {
	return r.labels[i]
}

// All returns all label definitions.
func (r *LabelRegistry) All() []LabelDef {
	return r.labels
}

// Count returns the number of label choices.
func (r *LabelRegistry) Count() int {
	return len(r.labels)
}
