package ports

import "github.com/evanfield/guidepost/pkg/domain"

// Catalog is the read side of the loaded dialogue content. Implementations
// load eagerly and are immutable afterwards; a missing id for an active
// language is a *domain.ContentError, never an implicit end of script.
type Catalog interface {
	// Node retrieves one node of the given language's script.
	Node(lang domain.Language, id int) (domain.Node, error)

	// Nodes returns the full script of one language in ascending id order,
	// for validation and visualization tooling.
	Nodes(lang domain.Language) ([]domain.Node, error)

	// Languages lists the loaded languages in stable order.
	Languages() []domain.Language

	// Rules returns the branch rules in their fixed precedence order.
	Rules() []domain.BranchRule
}
