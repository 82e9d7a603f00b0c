package runtime

import (
	"github.com/evanfield/guidepost/pkg/domain"
)

// Resolution describes the outcome of one flow-resolver pass.
type Resolution struct {
	Next int

	// Rule is the kind tag of the rule that overrode the declared target,
	// empty when the declared target stood.
	Rule string
}

// Resolve decides the next node id for a completed choice turn. Rules are
// evaluated in their fixed precedence order; the first one that fires wins
// and the declared target is the fallback. A rule whose antecedent answers
// are incomplete does not fire: partial state is expected while turns are
// completed one at a time, so the declared target stands silently.
func Resolve(rules []domain.BranchRule, s *domain.Session, current, declared int) Resolution {
	for _, rule := range rules {
		switch r := rule.(type) {
		case domain.ScoreGate:
			if next, ok := resolveScoreGate(r, s, current); ok {
				return Resolution{Next: next, Rule: r.Kind()}
			}
		case domain.ElapsedSkip:
			if next, ok := resolveElapsedSkip(r, s, declared); ok {
				return Resolution{Next: next, Rule: r.Kind()}
			}
		}
	}
	return Resolution{Next: declared}
}

// resolveScoreGate fires exactly once per block: on the turn that answers the
// block's trigger item, with every item numerically answered.
func resolveScoreGate(r domain.ScoreGate, s *domain.Session, current int) (int, bool) {
	if current != r.Trigger {
		return 0, false
	}
	if !s.Ledger.Answered(r.Items...) {
		return 0, false
	}
	if s.Ledger.Sum(r.Items...) < r.Threshold {
		return r.Below, true
	}
	return r.AtOrAbove, true
}

// resolveElapsedSkip fires when the flow is about to enter the guarded node
// and both milestones are recorded close enough together.
func resolveElapsedSkip(r domain.ElapsedSkip, s *domain.Session, declared int) (int, bool) {
	if declared != r.OnTarget {
		return 0, false
	}
	elapsed, ok := s.Milestones.Elapsed(r.First, r.Second)
	if !ok {
		return 0, false
	}
	if elapsed <= r.Within {
		return r.SkipTo, true
	}
	return 0, false
}
