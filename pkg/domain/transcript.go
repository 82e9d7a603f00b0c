package domain

// EntryKind distinguishes rendered nodes from echoed user input.
type EntryKind string

const (
	// EntryNode is a dialogue node rendered into the transcript.
	EntryNode EntryKind = "node"
	// EntryUser is the literal text a user typed at a free-text node.
	EntryUser EntryKind = "user"
)

// TranscriptEntry is one rendered turn. Entries are append-only and never
// mutated or reordered once pushed.
type TranscriptEntry struct {
	Kind   EntryKind `json:"kind"`
	NodeID int       `json:"node_id"`

	// Lines is the node text, in paragraph order. Empty for user entries.
	Lines []string `json:"lines,omitempty"`

	// Options are the choice labels offered with the node, if any.
	Options []string `json:"options,omitempty"`

	// UserText is the literal free-text submission. Only set for user entries.
	UserText string `json:"user_text,omitempty"`
}
