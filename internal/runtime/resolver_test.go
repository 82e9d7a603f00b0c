package runtime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/evanfield/guidepost/internal/runtime"
	"github.com/evanfield/guidepost/pkg/domain"
)

func gateRules() []domain.BranchRule {
	return []domain.BranchRule{
		domain.ScoreGate{
			Items:     []int{12, 13, 14},
			Trigger:   14,
			Threshold: 5,
			Below:     30,
			AtOrAbove: 21,
		},
	}
}

func TestResolve_ScoreGate(t *testing.T) {
	t.Run("Below threshold", func(t *testing.T) {
		s := domain.NewSession("r1", "en")
		s.Ledger.Record(12, "1")
		s.Ledger.Record(13, "1")
		s.Ledger.Record(14, "2")

		res := runtime.Resolve(gateRules(), s, 14, 15)
		assert.Equal(t, 30, res.Next)
		assert.Equal(t, domain.RuleKindScoreGate, res.Rule)
	})

	t.Run("At threshold routes to at_or_above", func(t *testing.T) {
		s := domain.NewSession("r2", "en")
		s.Ledger.Record(12, "2")
		s.Ledger.Record(13, "2")
		s.Ledger.Record(14, "1")

		res := runtime.Resolve(gateRules(), s, 14, 15)
		assert.Equal(t, 21, res.Next)
	})

	t.Run("Not at trigger node", func(t *testing.T) {
		s := domain.NewSession("r3", "en")
		s.Ledger.Record(12, "3")
		s.Ledger.Record(13, "3")
		s.Ledger.Record(14, "3")

		res := runtime.Resolve(gateRules(), s, 13, 14)
		assert.Equal(t, 14, res.Next, "the gate fires only on the trigger turn")
		assert.Empty(t, res.Rule)
	})

	t.Run("Partial answers fall through", func(t *testing.T) {
		s := domain.NewSession("r4", "en")
		s.Ledger.Record(14, "3")

		res := runtime.Resolve(gateRules(), s, 14, 15)
		assert.Equal(t, 15, res.Next, "an incomplete block leaves the declared target")
		assert.Empty(t, res.Rule)
	})

	t.Run("Non-numeric answer blocks the gate", func(t *testing.T) {
		s := domain.NewSession("r5", "en")
		s.Ledger.Record(12, "1")
		s.Ledger.Record(13, "often")
		s.Ledger.Record(14, "1")

		res := runtime.Resolve(gateRules(), s, 14, 15)
		assert.Equal(t, 15, res.Next)
	})
}

func TestResolve_ElapsedSkip(t *testing.T) {
	rules := []domain.BranchRule{
		domain.ElapsedSkip{
			OnTarget: 41,
			First:    "screen1",
			Second:   "screen2",
			Within:   24 * time.Hour,
			SkipTo:   60,
		},
	}
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("Within the window", func(t *testing.T) {
		s := domain.NewSession("e1", "en")
		s.Milestones.Mark("screen1", base)
		s.Milestones.Mark("screen2", base.Add(3*time.Hour))

		res := runtime.Resolve(rules, s, 40, 41)
		assert.Equal(t, 60, res.Next)
		assert.Equal(t, domain.RuleKindElapsedSkip, res.Rule)
	})

	t.Run("Exactly at the window", func(t *testing.T) {
		s := domain.NewSession("e2", "en")
		s.Milestones.Mark("screen1", base)
		s.Milestones.Mark("screen2", base.Add(24*time.Hour))

		res := runtime.Resolve(rules, s, 40, 41)
		assert.Equal(t, 60, res.Next, "the boundary itself still skips")
	})

	t.Run("Outside the window", func(t *testing.T) {
		s := domain.NewSession("e3", "en")
		s.Milestones.Mark("screen1", base)
		s.Milestones.Mark("screen2", base.Add(25*time.Hour))

		res := runtime.Resolve(rules, s, 40, 41)
		assert.Equal(t, 41, res.Next)
		assert.Empty(t, res.Rule)
	})

	t.Run("Missing milestone", func(t *testing.T) {
		s := domain.NewSession("e4", "en")
		s.Milestones.Mark("screen1", base)

		res := runtime.Resolve(rules, s, 40, 41)
		assert.Equal(t, 41, res.Next)
	})

	t.Run("Different declared target", func(t *testing.T) {
		s := domain.NewSession("e5", "en")
		s.Milestones.Mark("screen1", base)
		s.Milestones.Mark("screen2", base.Add(time.Hour))

		res := runtime.Resolve(rules, s, 40, 42)
		assert.Equal(t, 42, res.Next)
	})
}

func TestResolve_Precedence(t *testing.T) {
	// Two gates that would both fire on the same turn: the first in file
	// order wins.
	rules := []domain.BranchRule{
		domain.ScoreGate{Items: []int{5}, Trigger: 5, Threshold: 1, Below: 10, AtOrAbove: 20},
		domain.ScoreGate{Items: []int{5}, Trigger: 5, Threshold: 1, Below: 11, AtOrAbove: 21},
	}

	s := domain.NewSession("p1", "en")
	s.Ledger.Record(5, "3")

	res := runtime.Resolve(rules, s, 5, 6)
	assert.Equal(t, 20, res.Next)
}
