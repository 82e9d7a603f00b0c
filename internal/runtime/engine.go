// Package runtime is the turn state machine of the dialogue engine. It loads
// nodes from the catalog, applies the branch rules, maintains the session's
// transcript, ledger and milestone clock facts, and notifies the narration
// sink and lifecycle hooks.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/evanfield/guidepost/internal/logging"
	"github.com/evanfield/guidepost/pkg/domain"
	"github.com/evanfield/guidepost/pkg/ports"
)

// Engine drives one visible turn at a time. All state transitions run
// synchronously to completion in response to a single user action; the only
// asynchronous collaborator is the narration dispatcher, which is
// fire-and-forget.
type Engine struct {
	catalog  ports.Catalog
	rules    []domain.BranchRule
	clock    ports.Clock
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	narrator *dispatcher
	entryID  int
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithClock overrides the wall clock, used by the elapsed-time skip rule.
func WithClock(clock ports.Clock) EngineOption {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithNarrator registers the narration sink.
func WithNarrator(n ports.Narrator) EngineOption {
	return func(e *Engine) {
		if n != nil {
			e.narrator = newDispatcher(n, e.logger)
		}
	}
}

// WithEntryNode overrides the entry node id (default 1).
func WithEntryNode(id int) EngineOption {
	return func(e *Engine) {
		e.entryID = id
	}
}

// NewEngine creates a turn engine over a loaded catalog.
func NewEngine(catalog ports.Catalog, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog: catalog,
		rules:   catalog.Rules(),
		clock:   ports.SystemClock(),
		logger:  logging.NewNop(),
		entryID: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	// The dispatcher may have been built before WithLogger ran.
	if e.narrator != nil {
		e.narrator.logger = e.logger
	}
	return e
}

// Start initializes a session in the given language and renders the entry
// node. The returned entries are the transcript so far (exactly one entry).
func (e *Engine) Start(ctx context.Context, s *domain.Session) ([]domain.TranscriptEntry, error) {
	node, err := e.catalog.Node(s.Language, e.entryID)
	if err != nil {
		return nil, err
	}
	s.CurrentID = e.entryID
	e.push(ctx, s, node)
	return e.newEntries(s, 0), nil
}

// SubmitChoice advances one button-driven turn. The submitted value must
// match one of the current node's choice labels; the answer is recorded in
// the ledger under the current node id, the flow resolver picks the next
// node, and that node is rendered. Returns the newly appended entries.
func (e *Engine) SubmitChoice(ctx context.Context, s *domain.Session, value string) ([]domain.TranscriptEntry, error) {
	if s.Ended() {
		return nil, domain.ErrSessionEnded
	}
	if s.Status != domain.StatusAwaitingChoice {
		return nil, fmt.Errorf("%w: current turn expects typed input", domain.ErrInputRejected)
	}

	node, err := e.catalog.Node(s.Language, s.CurrentID)
	if err != nil {
		return nil, err
	}
	choice, ok := node.ChoiceFor(value)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not offered at node %d", domain.ErrUnknownChoice, value, s.CurrentID)
	}

	mark := len(s.Transcript)
	s.Ledger.Record(s.CurrentID, choice.Label)

	res := Resolve(e.rules, s, s.CurrentID, choice.To)
	if res.Rule != "" {
		e.emitBranch(ctx, s, res, choice.To)
	}

	if res.Next == domain.EndID {
		e.end(ctx, s)
		return nil, nil
	}

	next, err := e.catalog.Node(s.Language, res.Next)
	if err != nil {
		return nil, err
	}
	s.CurrentID = res.Next
	e.push(ctx, s, next)
	return e.newEntries(s, mark), nil
}

// SubmitText advances one free-text turn. Empty or whitespace-only input is
// rejected without any state change. Otherwise the raw text is recorded in
// the ledger at the current node id, echoed into the transcript, and the
// flow advances to the node at id+1.
func (e *Engine) SubmitText(ctx context.Context, s *domain.Session, text string) ([]domain.TranscriptEntry, error) {
	if s.Ended() {
		return nil, domain.ErrSessionEnded
	}
	if s.Status != domain.StatusAwaitingFreeText {
		return nil, fmt.Errorf("%w: current turn expects a choice", domain.ErrInputRejected)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty submission", domain.ErrInputRejected)
	}

	mark := len(s.Transcript)
	s.Ledger.Record(s.CurrentID, text)
	s.Transcript = append(s.Transcript, domain.TranscriptEntry{
		Kind:     domain.EntryUser,
		NodeID:   s.CurrentID,
		UserText: text,
	})

	// Free-text nodes advance by adjacency rather than a declared target.
	nextID := s.CurrentID + 1
	next, err := e.catalog.Node(s.Language, nextID)
	if err != nil {
		return nil, err
	}
	s.CurrentID = nextID
	e.push(ctx, s, next)
	return e.newEntries(s, mark), nil
}

// Close flushes and stops the narration dispatcher. The engine itself holds
// no other resources.
func (e *Engine) Close() {
	if e.narrator != nil {
		e.narrator.close()
	}
}

// push renders a node into the transcript, records its milestone timestamp
// on first reach, notifies the narration sink exactly once, and settles the
// awaiting state.
func (e *Engine) push(ctx context.Context, s *domain.Session, node domain.Node) {
	s.Transcript = append(s.Transcript, domain.TranscriptEntry{
		Kind:    domain.EntryNode,
		NodeID:  node.ID,
		Lines:   node.Lines,
		Options: node.Labels(),
	})

	if node.Milestone != "" {
		s.Milestones.Mark(node.Milestone, e.clock.Now())
	}

	e.emitNodeEnter(ctx, s, node)
	if e.narrator != nil {
		e.narrator.enqueue(node.Lines)
	}

	switch {
	case node.FreeText:
		s.Status = domain.StatusAwaitingFreeText
	case node.Terminal():
		e.end(ctx, s)
	default:
		s.Status = domain.StatusAwaitingChoice
	}
}

func (e *Engine) end(ctx context.Context, s *domain.Session) {
	s.Status = domain.StatusEnded
	e.logger.Debug("session ended", "session_id", s.ID, "node", s.CurrentID)
	if e.hooks.OnSessionEnd != nil {
		e.hooks.OnSessionEnd(ctx, &domain.SessionEvent{
			EventBase:   e.eventBase(domain.EventSessionEnd, s),
			FinalNodeID: s.CurrentID,
			Turns:       len(s.Transcript),
		})
	}
}

func (e *Engine) emitNodeEnter(ctx context.Context, s *domain.Session, node domain.Node) {
	e.logger.Debug("node enter", "session_id", s.ID, "node", node.ID, "lang", s.Language)
	if e.hooks.OnNodeEnter != nil {
		e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
			EventBase: e.eventBase(domain.EventNodeEnter, s),
			NodeID:    node.ID,
			FreeText:  node.FreeText,
			Terminal:  node.Terminal(),
		})
	}
}

func (e *Engine) emitBranch(ctx context.Context, s *domain.Session, res Resolution, declared int) {
	e.logger.Debug("branch override",
		"session_id", s.ID, "rule", res.Rule,
		"from", s.CurrentID, "declared", declared, "resolved", res.Next,
	)
	if e.hooks.OnBranch != nil {
		e.hooks.OnBranch(ctx, &domain.BranchEvent{
			EventBase: e.eventBase(domain.EventBranch, s),
			RuleKind:  res.Rule,
			From:      s.CurrentID,
			Declared:  declared,
			Resolved:  res.Next,
		})
	}
}

func (e *Engine) eventBase(t domain.EventType, s *domain.Session) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.clock.Now(),
		Type:      t,
		SessionID: s.ID,
		Language:  s.Language,
	}
}

// newEntries returns copies of the transcript entries appended since mark.
func (e *Engine) newEntries(s *domain.Session, mark int) []domain.TranscriptEntry {
	entries := make([]domain.TranscriptEntry, len(s.Transcript)-mark)
	copy(entries, s.Transcript[mark:])
	return entries
}
