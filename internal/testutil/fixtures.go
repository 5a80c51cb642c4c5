package testutil

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/alexanderramin/strengthscope/internal/catalog"
)

// ExampleCatalogYAML has two traits in one category: a (3 statements) and
// b (2 statements), plus an "only-b" edition.
const ExampleCatalogYAML = `
version: "test"
language: en
title: Strength Report
categories:
  - id: x
    name: X
    color: "#336699"
traits:
  - id: a
    name: Alpha
    category: x
    statements: ["a one", "a two", "a three"]
  - id: b
    name: Beta
    category: x
    statements: ["b one", "b two"]
editions:
  - id: only-b
    name: Only B
    traits: [b]
`

// ExampleCatalog parses ExampleCatalogYAML.
func ExampleCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	return MustParseCatalog(t, ExampleCatalogYAML)
}

// MustParseCatalog parses a YAML catalog or fails the test.
func MustParseCatalog(t testing.TB, doc string) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Parse([]byte(doc), catalog.FormatYAML)
	if err != nil {
		t.Fatalf("parsing test catalog: %v", err)
	}
	return c
}

// ErrStubFailure is returned by failing stub generators.
var ErrStubFailure = errors.New("stub generator failure")

// StubGenerator returns canned narrative text and records how often it was called.
type StubGenerator struct {
	Text       string
	Err        error
	Calls      atomic.Int32
	LastPrompt string
}

func (g *StubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.Calls.Add(1)
	g.LastPrompt = prompt
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if g.Err != nil {
		return "", g.Err
	}
	return g.Text, nil
}

// BlockingGenerator waits for the context to end, simulating a hung service.
type BlockingGenerator struct{}

func (BlockingGenerator) Generate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
