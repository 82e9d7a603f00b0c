package catalog

import (
	"errors"
	"sort"

	"github.com/evanfield/guidepost/pkg/domain"
)

// EntryNodeID is where every session begins.
const EntryNodeID = 1

// Validate crawls every language's script from the entry node and checks the
// branch rules against it. It reports dangling choice targets, missing
// free-text successors, unreachable nodes, rule targets or items that do not
// exist, and milestones the elapsed-time rules refer to but no node records.
// All problems are collected before returning so one run shows the full
// damage of a broken script.
func (c *Catalog) Validate() error {
	var problems []error

	for _, lang := range c.Languages() {
		problems = append(problems, c.validateLanguage(lang)...)
	}
	return errors.Join(problems...)
}

func (c *Catalog) validateLanguage(lang domain.Language) []error {
	script := c.languages[lang]
	var problems []error

	fail := func(nodeID int, format string, args ...any) {
		problems = append(problems, domain.NewContentError(lang, nodeID, format, args...))
	}

	if _, ok := script[EntryNodeID]; !ok {
		fail(EntryNodeID, "entry node missing")
		return problems
	}

	// Rule edges count as reachability: a crisis node is only ever entered
	// through a score gate, never through a declared choice target.
	ruleTargets, ruleItems, milestones := c.ruleFacts()

	for item := range ruleItems {
		if _, ok := script[item]; !ok {
			fail(item, "rule scores an item that does not exist")
		}
	}
	for target := range ruleTargets {
		if _, ok := script[target]; !ok {
			fail(target, "rule redirects to a node that does not exist")
		}
	}
	for milestone := range milestones {
		if !c.hasMilestone(lang, milestone) {
			fail(0, "no node records milestone %q", milestone)
		}
	}

	visited := make(map[int]bool)
	queue := []int{EntryNodeID}
	for target := range ruleTargets {
		if _, ok := script[target]; ok {
			queue = append(queue, target)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		node := script[id]
		for _, choice := range node.Choices {
			if choice.To == domain.EndID {
				continue
			}
			if _, ok := script[choice.To]; !ok {
				fail(id, "choice %q targets missing node %d", choice.Label, choice.To)
				continue
			}
			queue = append(queue, choice.To)
		}

		if node.FreeText {
			// Free-text nodes advance by id+1; the successor must exist.
			if _, ok := script[id+1]; !ok {
				fail(id, "free-text node has no successor %d", id+1)
				continue
			}
			queue = append(queue, id+1)
		}
	}

	var unreachable []int
	for id := range script {
		if !visited[id] {
			unreachable = append(unreachable, id)
		}
	}
	sort.Ints(unreachable)
	for _, id := range unreachable {
		fail(id, "node is unreachable from the entry node")
	}

	return problems
}

// ruleFacts collects the node ids and milestone names the rule list refers to.
func (c *Catalog) ruleFacts() (targets, items map[int]bool, milestones map[string]bool) {
	targets = make(map[int]bool)
	items = make(map[int]bool)
	milestones = make(map[string]bool)

	for _, rule := range c.rules {
		switch r := rule.(type) {
		case domain.ScoreGate:
			for _, item := range r.Items {
				items[item] = true
			}
			targets[r.Below] = true
			targets[r.AtOrAbove] = true
		case domain.ElapsedSkip:
			targets[r.SkipTo] = true
			milestones[r.First] = true
			milestones[r.Second] = true
		}
	}
	return targets, items, milestones
}

func (c *Catalog) hasMilestone(lang domain.Language, milestone string) bool {
	for _, node := range c.languages[lang] {
		if node.Milestone == milestone {
			return true
		}
	}
	return false
}
