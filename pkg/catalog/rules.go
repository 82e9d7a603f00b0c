package catalog

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/evanfield/guidepost/pkg/domain"
)

// rulesDoc mirrors rules.yaml: an ordered list of tagged-variant maps.
type rulesDoc struct {
	Rules []map[string]any `yaml:"rules"`
}

// elapsedSkipDoc is the wire form of an elapsed_skip rule; the hour count is
// converted to a duration when the domain rule is built.
type elapsedSkipDoc struct {
	OnTarget    int    `mapstructure:"on_target"`
	First       string `mapstructure:"first"`
	Second      string `mapstructure:"second"`
	WithinHours int    `mapstructure:"within_hours"`
	SkipTo      int    `mapstructure:"skip_to"`
}

// parseRules decodes the tagged-variant rule list, preserving file order as
// the evaluation precedence.
func parseRules(data []byte) ([]domain.BranchRule, error) {
	var doc rulesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	rules := make([]domain.BranchRule, 0, len(doc.Rules))
	for i, raw := range doc.Rules {
		kind, _ := raw["type"].(string)
		delete(raw, "type")

		rule, err := decodeRule(kind, raw)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, kind, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func decodeRule(kind string, raw map[string]any) (domain.BranchRule, error) {
	switch kind {
	case domain.RuleKindScoreGate:
		var gate domain.ScoreGate
		if err := strictDecode(raw, &gate); err != nil {
			return nil, err
		}
		if len(gate.Items) == 0 {
			return nil, fmt.Errorf("score_gate needs at least one item")
		}
		if gate.Trigger == 0 {
			gate.Trigger = gate.Items[len(gate.Items)-1]
		}
		return gate, nil

	case domain.RuleKindElapsedSkip:
		var doc elapsedSkipDoc
		if err := strictDecode(raw, &doc); err != nil {
			return nil, err
		}
		if doc.WithinHours <= 0 {
			return nil, fmt.Errorf("elapsed_skip needs a positive within_hours")
		}
		if doc.First == "" || doc.Second == "" {
			return nil, fmt.Errorf("elapsed_skip needs both milestone names")
		}
		return domain.ElapsedSkip{
			OnTarget: doc.OnTarget,
			First:    doc.First,
			Second:   doc.Second,
			Within:   time.Duration(doc.WithinHours) * time.Hour,
			SkipTo:   doc.SkipTo,
		}, nil

	default:
		return nil, fmt.Errorf("unknown rule type %q", kind)
	}
}

// strictDecode rejects unknown keys so typos in rule files fail the load
// instead of silently disabling a rule field.
func strictDecode(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
