package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoTraitYAML = `
version: "test"
categories:
  - id: x
    name: X
    color: "#336699"
traits:
  - id: a
    name: A
    category: x
    statements: ["a1", "a2", "a3"]
  - id: b
    name: B
    category: x
    statements: ["b1", "b2"]
editions:
  - id: only-b
    name: Only B
    traits: [b]
`

func TestDefault_LoadsBuiltInCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.Traits, 34)
	assert.Len(t, c.Categories, 4)
	assert.Empty(t, c.Unmapped(), "every built-in trait should belong to a category")
	for _, tr := range c.Traits {
		assert.Len(t, tr.Statements, 5, "trait %s", tr.ID)
	}

	n, err := c.StatementCount(FullEdition)
	require.NoError(t, err)
	assert.Equal(t, 170, n)

	starter, err := c.ActiveTraits("starter")
	require.NoError(t, err)
	assert.Len(t, starter, 12)
}

func TestParse_YAML(t *testing.T) {
	c, err := Parse([]byte(twoTraitYAML), FormatYAML)
	require.NoError(t, err)

	tr, ok := c.Trait("a")
	require.True(t, ok)
	assert.Equal(t, []string{"a1", "a2", "a3"}, tr.Statements)

	cat, ok := c.CategoryOf("b")
	require.True(t, ok)
	assert.Equal(t, "X", cat.Name)
	assert.Equal(t, 0, c.Order("a"))
	assert.Equal(t, 1, c.Order("b"))
	assert.Equal(t, 2, c.Order("missing"))
}

func TestParse_JSON(t *testing.T) {
	doc := `{"version":"1","categories":[{"id":"x","name":"X"}],
		"traits":[{"id":"a","name":"A","category":"x","statements":["s"]}]}`
	c, err := Parse([]byte(doc), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "1", c.Version)
}

func TestParse_TraitWithoutStatementsFailsLoudly(t *testing.T) {
	doc := `
traits:
  - id: empty
    name: Empty
    category: x
    statements: []
`
	_, err := Parse([]byte(doc), FormatYAML)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
	assert.Contains(t, err.Error(), `trait "empty": has no statements`)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	c := &Catalog{
		Categories: []Category{{ID: "x", Color: "blue"}, {ID: "x"}},
		Traits: []Trait{
			{ID: "a", Statements: []string{"ok", "  "}},
			{ID: "a", Statements: []string{"dup"}},
		},
		Editions: []Edition{{ID: "e", Traits: []string{"ghost"}}},
	}

	errs := Validate(c)

	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	assert.Contains(t, msgs, `category[1]: duplicate id "x"`)
	assert.Contains(t, msgs, `category "x": color "blue" is not #rrggbb`)
	assert.Contains(t, msgs, `trait "a": statement[1] is empty`)
	assert.Contains(t, msgs, `trait[1]: duplicate id "a"`)
	assert.Contains(t, msgs, `edition "e": unknown trait "ghost"`)
}

func TestUnmapped_ReportsTraitsOutsideCategories(t *testing.T) {
	doc := `
categories:
  - id: x
    name: X
traits:
  - id: a
    name: A
    category: x
    statements: ["s"]
  - id: orphan
    name: Orphan
    statements: ["s"]
  - id: typo
    name: Typo
    category: y
    statements: ["s"]
`
	c, err := Parse([]byte(doc), FormatYAML)
	require.NoError(t, err, "unmapped traits are not a load error")
	assert.Equal(t, []string{"orphan", "typo"}, c.Unmapped())
}

func TestEdition_FullIsImplicit(t *testing.T) {
	c, err := Parse([]byte(twoTraitYAML), FormatYAML)
	require.NoError(t, err)

	full, err := c.Edition("")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, full.Traits)

	eds := c.ListEditions()
	require.Len(t, eds, 2)
	assert.Equal(t, FullEdition, eds[0].ID)
	assert.Equal(t, "only-b", eds[1].ID)

	_, err = c.Edition("nope")
	assert.ErrorIs(t, err, ErrUnknownEdition)
}

func TestActiveTraits_KeepsCatalogOrder(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	traits, err := c.ActiveTraits("starter")
	require.NoError(t, err)
	for i := 1; i < len(traits); i++ {
		assert.Less(t, c.Order(traits[i-1].ID), c.Order(traits[i].ID))
	}
}

func TestLoadFile_ChoosesFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"traits":[{"id":"a","name":"A","statements":["s"]}]}`), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, c.Unmapped())

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestDecode_SkipsValidation(t *testing.T) {
	doc := `
traits:
  - id: a
    name: A
    category: ghost
    statements: []
`
	c, err := Decode([]byte(doc), FormatYAML)
	require.NoError(t, err)
	assert.NotEmpty(t, Validate(c))
	assert.Equal(t, []string{"a"}, c.Unmapped())

	_, err = Parse([]byte(doc), FormatYAML)
	assert.ErrorIs(t, err, ErrInvalidCatalog)

	_, err = Decode([]byte("traits: [unclosed"), FormatYAML)
	assert.ErrorContains(t, err, "parsing catalog")
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte(twoTraitYAML), 0o644))

	c, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Empty(t, Validate(c))
	assert.Len(t, c.Traits, 2)
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Len(t, c.Traits, 34)
}

func TestDefaultDocument_IsACopy(t *testing.T) {
	doc := DefaultDocument()
	c, err := Parse(doc, FormatYAML)
	require.NoError(t, err)
	assert.Len(t, c.Traits, 34)

	doc[0] = '!'
	assert.NotEqual(t, doc[0], DefaultDocument()[0])
}
