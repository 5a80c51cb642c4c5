package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate checks a catalog for structural errors.
// Returns a slice of errors (empty if valid). A trait whose category is
// missing or undefined is not an error; see Catalog.Unmapped.
func Validate(c *Catalog) []error {
	var errs []error

	if len(c.Traits) == 0 {
		errs = append(errs, fmt.Errorf("at least one trait is required"))
	}

	catIDs := map[string]bool{}
	for i, cat := range c.Categories {
		if cat.ID == "" {
			errs = append(errs, fmt.Errorf("category[%d]: id is required", i))
		}
		if catIDs[cat.ID] {
			errs = append(errs, fmt.Errorf("category[%d]: duplicate id %q", i, cat.ID))
		}
		catIDs[cat.ID] = true
		if cat.Color != "" && !hexColor.MatchString(cat.Color) {
			errs = append(errs, fmt.Errorf("category %q: color %q is not #rrggbb", cat.ID, cat.Color))
		}
	}

	traitIDs := map[string]bool{}
	for i, t := range c.Traits {
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("trait[%d]: id is required", i))
		}
		if traitIDs[t.ID] {
			errs = append(errs, fmt.Errorf("trait[%d]: duplicate id %q", i, t.ID))
		}
		traitIDs[t.ID] = true
		if len(t.Statements) == 0 {
			errs = append(errs, fmt.Errorf("trait %q: has no statements", t.ID))
		}
		for j, s := range t.Statements {
			if strings.TrimSpace(s) == "" {
				errs = append(errs, fmt.Errorf("trait %q: statement[%d] is empty", t.ID, j))
			}
		}
	}

	editionIDs := map[string]bool{}
	for i, e := range c.Editions {
		if e.ID == "" {
			errs = append(errs, fmt.Errorf("edition[%d]: id is required", i))
		}
		if editionIDs[e.ID] {
			errs = append(errs, fmt.Errorf("edition[%d]: duplicate id %q", i, e.ID))
		}
		editionIDs[e.ID] = true
		if len(e.Traits) == 0 {
			errs = append(errs, fmt.Errorf("edition %q: no traits selected", e.ID))
		}
		for _, id := range e.Traits {
			if !traitIDs[id] {
				errs = append(errs, fmt.Errorf("edition %q: unknown trait %q", e.ID, id))
			}
		}
	}

	return errs
}
