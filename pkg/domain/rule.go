package domain

import "time"

// Rule kind tags, used by catalog files and introspection tooling.
const (
	RuleKindScoreGate   = "score_gate"
	RuleKindElapsedSkip = "elapsed_skip"
)

// BranchRule is one precedence-ordered override of the default choice target.
// Rules are pure data; evaluation lives in the runtime so each rule can be
// tested independently of the turn machinery.
type BranchRule interface {
	// Kind returns the rule's type tag.
	Kind() string
}

// ScoreGate redirects the flow based on the sum of a block of screening
// answers. It fires exactly once per block: when the current node is the
// block's last item and every item has a numeric answer recorded. A sum below
// Threshold routes to Below, otherwise to AtOrAbove. With any item still
// unanswered the gate does not fire and the declared target stands.
type ScoreGate struct {
	// Items are the node ids whose answers are summed.
	Items []int `mapstructure:"items"`

	// Trigger is the node whose answer completes the block. Defaults to the
	// last of Items when unset in content.
	Trigger int `mapstructure:"trigger"`

	Threshold int `mapstructure:"threshold"`
	Below     int `mapstructure:"below"`
	AtOrAbove int `mapstructure:"at_or_above"`
}

// Kind implements BranchRule.
func (ScoreGate) Kind() string { return RuleKindScoreGate }

// ElapsedSkip bypasses a re-screening sub-flow when too little time has
// passed between two milestones. When a choice declares OnTarget as its
// destination and both milestones are recorded no more than Within apart,
// the flow jumps to SkipTo instead. Missing milestones leave the declared
// target untouched.
type ElapsedSkip struct {
	OnTarget int           `mapstructure:"on_target"`
	First    string        `mapstructure:"first"`
	Second   string        `mapstructure:"second"`
	Within   time.Duration `mapstructure:"-"`
	SkipTo   int           `mapstructure:"skip_to"`
}

// Kind implements BranchRule.
func (ElapsedSkip) Kind() string { return RuleKindElapsedSkip }
