package domain

import "strings"

// EndID is the sentinel target id for "end of script". A choice pointing at
// EndID terminates the session instead of loading another node.
const EndID = -1

// Language identifies one of the parallel content catalogs.
// A given node id denotes the same semantic step in every language.
type Language string

// Node represents one step of the scripted dialogue.
//
// A node with Choices expects a button press; a node with FreeText set expects
// typed input and advances to id+1 once input is submitted. A node with
// neither is terminal: it renders and the session ends.
type Node struct {
	ID    int      `json:"id" yaml:"id"`
	Lines []string `json:"lines" yaml:"lines"`

	// Choices are the selectable answers. Multiple choices may share a target
	// (all four Likert answers on a screening item advance to the same next
	// question); the answer value differs even though the destination does not.
	Choices []Choice `json:"choices,omitempty" yaml:"choices,omitempty"`

	// FreeText marks a node that captures typed input. This is an explicit
	// content annotation, never inferred from an empty choice list.
	FreeText bool `json:"free_text,omitempty" yaml:"free_text,omitempty"`

	// Milestone names a session-clock fact recorded the first time this node
	// is reached (e.g. "screen1"). Empty for ordinary nodes.
	Milestone string `json:"milestone,omitempty" yaml:"milestone,omitempty"`
}

// Choice is a selectable answer attached to a node.
type Choice struct {
	Label string `json:"label" yaml:"label"`
	To    int    `json:"to" yaml:"to"`
}

// Terminal reports whether the node ends the session after rendering.
func (n Node) Terminal() bool {
	return len(n.Choices) == 0 && !n.FreeText
}

// ChoiceFor looks up the choice whose label matches the submitted value.
// Matching trims surrounding whitespace but is otherwise exact: "0" and "Yes"
// are answer values, not natural-language input.
func (n Node) ChoiceFor(value string) (Choice, bool) {
	value = strings.TrimSpace(value)
	for _, c := range n.Choices {
		if c.Label == value {
			return c, true
		}
	}
	return Choice{}, false
}

// Labels returns the choice labels in display order.
func (n Node) Labels() []string {
	if len(n.Choices) == 0 {
		return nil
	}
	labels := make([]string, len(n.Choices))
	for i, c := range n.Choices {
		labels[i] = c.Label
	}
	return labels
}
