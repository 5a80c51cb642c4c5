package catalog

import "fmt"

// FullEdition is the implicit edition that activates every trait in catalog order.
const FullEdition = "full"

// Category groups traits for the summary chart.
type Category struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"` // #rrggbb
}

// Trait is a named behavioral axis scored by summing its statements.
type Trait struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Category   string   `json:"category,omitempty" yaml:"category,omitempty"`
	Statements []string `json:"statements" yaml:"statements"`
}

// Edition selects the subset of traits presented in one questionnaire run.
type Edition struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Traits []string `json:"traits" yaml:"traits"`
}

// Catalog is the versioned trait/category/statement configuration.
// It is read-only after Parse and may be shared between goroutines.
type Catalog struct {
	Version    string     `json:"version" yaml:"version"`
	Language   string     `json:"language,omitempty" yaml:"language,omitempty"`
	Title      string     `json:"title,omitempty" yaml:"title,omitempty"`
	Categories []Category `json:"categories" yaml:"categories"`
	Traits     []Trait    `json:"traits" yaml:"traits"`
	Editions   []Edition  `json:"editions,omitempty" yaml:"editions,omitempty"`

	traitIdx    map[string]int
	categoryIdx map[string]int
}

func (c *Catalog) index() {
	c.traitIdx = make(map[string]int, len(c.Traits))
	for i, t := range c.Traits {
		if _, dup := c.traitIdx[t.ID]; !dup {
			c.traitIdx[t.ID] = i
		}
	}
	c.categoryIdx = make(map[string]int, len(c.Categories))
	for i, cat := range c.Categories {
		if _, dup := c.categoryIdx[cat.ID]; !dup {
			c.categoryIdx[cat.ID] = i
		}
	}
}

// Trait looks up a trait by ID.
func (c *Catalog) Trait(id string) (Trait, bool) {
	i, ok := c.traitIdx[id]
	if !ok {
		return Trait{}, false
	}
	return c.Traits[i], true
}

// Category looks up a category by ID.
func (c *Catalog) Category(id string) (Category, bool) {
	i, ok := c.categoryIdx[id]
	if !ok {
		return Category{}, false
	}
	return c.Categories[i], true
}

// CategoryOf returns the category a trait belongs to. The second result is
// false when the trait is unknown or its category is not defined.
func (c *Catalog) CategoryOf(traitID string) (Category, bool) {
	t, ok := c.Trait(traitID)
	if !ok || t.Category == "" {
		return Category{}, false
	}
	return c.Category(t.Category)
}

// Order returns the catalog position of a trait, used as the ranking tie-break.
// Unknown traits sort after all known ones.
func (c *Catalog) Order(traitID string) int {
	if i, ok := c.traitIdx[traitID]; ok {
		return i
	}
	return len(c.Traits)
}

// Unmapped returns the IDs of traits that are not assigned to a defined
// category, in catalog order. Their scores never reach category totals.
func (c *Catalog) Unmapped() []string {
	var out []string
	for _, t := range c.Traits {
		if _, ok := c.CategoryOf(t.ID); !ok {
			out = append(out, t.ID)
		}
	}
	return out
}

// ListEditions returns the declared editions, with the implicit full edition first
// when the catalog does not declare one.
func (c *Catalog) ListEditions() []Edition {
	for _, e := range c.Editions {
		if e.ID == FullEdition {
			return append([]Edition(nil), c.Editions...)
		}
	}
	out := make([]Edition, 0, len(c.Editions)+1)
	out = append(out, c.fullEdition())
	return append(out, c.Editions...)
}

// Edition resolves an edition by ID. An empty ID selects the full edition.
func (c *Catalog) Edition(id string) (Edition, error) {
	if id == "" {
		id = FullEdition
	}
	for _, e := range c.Editions {
		if e.ID == id {
			return e, nil
		}
	}
	if id == FullEdition {
		return c.fullEdition(), nil
	}
	return Edition{}, fmt.Errorf("%w: %q", ErrUnknownEdition, id)
}

// ActiveTraits returns the traits of an edition in catalog order.
func (c *Catalog) ActiveTraits(editionID string) ([]Trait, error) {
	e, err := c.Edition(editionID)
	if err != nil {
		return nil, err
	}
	selected := make(map[string]bool, len(e.Traits))
	for _, id := range e.Traits {
		selected[id] = true
	}
	out := make([]Trait, 0, len(e.Traits))
	for _, t := range c.Traits {
		if selected[t.ID] {
			out = append(out, t)
		}
	}
	return out, nil
}

// StatementCount returns the number of statements presented by an edition.
func (c *Catalog) StatementCount(editionID string) (int, error) {
	traits, err := c.ActiveTraits(editionID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range traits {
		n += len(t.Statements)
	}
	return n, nil
}

func (c *Catalog) fullEdition() Edition {
	ids := make([]string, len(c.Traits))
	for i, t := range c.Traits {
		ids[i] = t.ID
	}
	return Edition{ID: FullEdition, Name: "All traits", Traits: ids}
}
