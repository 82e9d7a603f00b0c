// Package catalog loads the per-language dialogue scripts and the shared
// branch-rule list from YAML, validates them, and serves them immutably.
package catalog

import (
	"sort"

	"github.com/evanfield/guidepost/pkg/domain"
)

// Catalog is an immutable, eagerly loaded collection of per-language node
// maps plus the branch rules in precedence order. It implements ports.Catalog.
type Catalog struct {
	languages map[domain.Language]map[int]domain.Node
	rules     []domain.BranchRule
}

// Node retrieves one node of the given language's script.
// A missing language or id is a *domain.ContentError.
func (c *Catalog) Node(lang domain.Language, id int) (domain.Node, error) {
	script, ok := c.languages[lang]
	if !ok {
		return domain.Node{}, domain.NewContentError(lang, 0, "language not loaded")
	}
	node, ok := script[id]
	if !ok {
		return domain.Node{}, domain.NewContentError(lang, id, "node not found")
	}
	return node, nil
}

// Nodes returns one language's script in ascending id order.
func (c *Catalog) Nodes(lang domain.Language) ([]domain.Node, error) {
	script, ok := c.languages[lang]
	if !ok {
		return nil, domain.NewContentError(lang, 0, "language not loaded")
	}
	nodes := make([]domain.Node, 0, len(script))
	for _, n := range script {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes, nil
}

// Languages lists the loaded languages in lexical order.
func (c *Catalog) Languages() []domain.Language {
	langs := make([]domain.Language, 0, len(c.languages))
	for l := range c.languages {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// Rules returns the branch rules in their fixed precedence order.
func (c *Catalog) Rules() []domain.BranchRule {
	return c.rules
}
