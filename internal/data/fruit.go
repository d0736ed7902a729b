package data

import (
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/airslash/airslash/internal/world"
)

// FruitTemplate is one entry of fruit_list.yaml.
type FruitTemplate struct {
	Name  string `yaml:"name"`
	Glyph string `yaml:"glyph"`
	Color string `yaml:"color"`
	Kind  string `yaml:"kind"` // "fruit" (default) or "bomb"
}

// Rune returns the first rune of the glyph.
func (t *FruitTemplate) Rune() rune {
	r, _ := utf8.DecodeRuneInString(t.Glyph)
	return r
}

func (t *FruitTemplate) ObjectKind() world.Kind {
	if t.Kind == "bomb" {
		return world.KindBomb
	}
	return world.KindFruit
}

// FruitTable holds the regular fruit templates and the single penalty
// template.
type FruitTable struct {
	fruits []*FruitTemplate
	bomb   *FruitTemplate
	byName map[string]*FruitTemplate
}

// LoadFruitTable loads fruit_list.yaml.
func LoadFruitTable(path string) (*FruitTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fruit list: %w", err)
	}
	var entries []FruitTemplate
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse fruit list: %w", err)
	}
	return NewFruitTable(entries)
}

// NewFruitTable validates entries: names unique, glyph and color set, at
// least one fruit and exactly one bomb.
func NewFruitTable(entries []FruitTemplate) (*FruitTable, error) {
	t := &FruitTable{byName: make(map[string]*FruitTemplate, len(entries))}
	for i := range entries {
		e := &entries[i]
		if e.Name == "" || e.Glyph == "" || e.Color == "" {
			return nil, fmt.Errorf("fruit entry %d: name, glyph and color are required", i)
		}
		if _, dup := t.byName[e.Name]; dup {
			return nil, fmt.Errorf("fruit entry %d: duplicate name %q", i, e.Name)
		}
		switch e.Kind {
		case "", "fruit":
			e.Kind = "fruit"
			t.fruits = append(t.fruits, e)
		case "bomb":
			if t.bomb != nil {
				return nil, fmt.Errorf("fruit entry %d: second bomb %q (already have %q)", i, e.Name, t.bomb.Name)
			}
			t.bomb = e
		default:
			return nil, fmt.Errorf("fruit entry %d: unknown kind %q", i, e.Kind)
		}
		t.byName[e.Name] = e
	}
	if len(t.fruits) == 0 {
		return nil, fmt.Errorf("fruit list has no fruit entries")
	}
	if t.bomb == nil {
		return nil, fmt.Errorf("fruit list has no bomb entry")
	}
	return t, nil
}

// DefaultFruitTable is the built-in set used when no fruit list is present.
func DefaultFruitTable() *FruitTable {
	t, err := NewFruitTable([]FruitTemplate{
		{Name: "apple", Glyph: "🍎", Color: "#ef4444"},
		{Name: "banana", Glyph: "🍌", Color: "#facc15"},
		{Name: "watermelon", Glyph: "🍉", Color: "#10b981"},
		{Name: "orange", Glyph: "🍊", Color: "#f97316"},
		{Name: "pineapple", Glyph: "🍍", Color: "#eab308"},
		{Name: "kiwi", Glyph: "🥝", Color: "#84cc16"},
		{Name: "grapes", Glyph: "🍇", Color: "#8b5cf6"},
		{Name: "bomb", Glyph: "💣", Color: "#334155", Kind: "bomb"},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// Fruits returns the regular templates in file order.
func (t *FruitTable) Fruits() []*FruitTemplate { return t.fruits }

func (t *FruitTable) Bomb() *FruitTemplate { return t.bomb }

// Get returns the template with the given name, or nil if none.
func (t *FruitTable) Get(name string) *FruitTemplate { return t.byName[name] }

// Count returns the total number of templates including the bomb.
func (t *FruitTable) Count() int { return len(t.byName) }
