package domain

import (
	"strconv"
	"strings"
)

// Answer is one recorded response. When the submitted value is a digit string
// it is stored parsed; otherwise the raw text is kept and the answer does not
// participate in score sums.
type Answer struct {
	Raw     string `json:"raw"`
	Value   int    `json:"value,omitempty"`
	Numeric bool   `json:"numeric,omitempty"`
}

// ParseAnswer converts a submitted value into an Answer.
func ParseAnswer(raw string) Answer {
	if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return Answer{Raw: raw, Value: v, Numeric: true}
	}
	return Answer{Raw: raw}
}

// Ledger is the append/overwrite record of answers keyed by node id.
// Entries are never deleted; revisiting a node overwrites its entry.
type Ledger map[int]Answer

// Record stores the answer given at a node.
func (l Ledger) Record(nodeID int, raw string) {
	l[nodeID] = ParseAnswer(raw)
}

// Get returns the answer recorded at a node, if any.
func (l Ledger) Get(nodeID int) (Answer, bool) {
	a, ok := l[nodeID]
	return a, ok
}

// Sum adds the numeric answers recorded at the given nodes. Non-numeric and
// missing entries are skipped, not errors: free-text nodes and skipped nodes
// must not break score aggregation.
func (l Ledger) Sum(nodeIDs ...int) int {
	total := 0
	for _, id := range nodeIDs {
		if a, ok := l[id]; ok && a.Numeric {
			total += a.Value
		}
	}
	return total
}

// Answered reports whether every given node has a numeric answer recorded.
// Branch rules use this to detect partial state and fall through to the
// declared target instead of firing early.
func (l Ledger) Answered(nodeIDs ...int) bool {
	for _, id := range nodeIDs {
		if a, ok := l[id]; !ok || !a.Numeric {
			return false
		}
	}
	return true
}

// clone returns an independent copy of the ledger.
func (l Ledger) clone() Ledger {
	out := make(Ledger, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}
