package guidepost

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/evanfield/guidepost/content"
	"github.com/evanfield/guidepost/internal/logging"
	"github.com/evanfield/guidepost/internal/runtime"
	"github.com/evanfield/guidepost/pkg/catalog"
	"github.com/evanfield/guidepost/pkg/domain"
	"github.com/evanfield/guidepost/pkg/ports"
)

// Version is the release version reported by the CLI.
const Version = "0.2.0"

// Engine is the high-level entry point for the Guidepost library. It wraps
// the internal turn runtime and provides a simplified API for hosts (CLI,
// HTTP server, tests).
type Engine struct {
	runtime     *runtime.Engine
	catalog     ports.Catalog
	logger      *slog.Logger
	runtimeOpts []runtime.EngineOption
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithCatalog injects an already-loaded catalog, bypassing the script
// directory lookup.
func WithCatalog(cat ports.Catalog) Option {
	return func(e *Engine) {
		e.catalog = cat
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithNarrator registers the narration sink. Newly rendered node text is
// delivered to it in order, exactly once per push, without ever blocking
// the turn.
func WithNarrator(n ports.Narrator) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithNarrator(n))
	}
}

// WithClock overrides the wall clock used for milestone timestamps.
func WithClock(clock ports.Clock) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithClock(clock))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithLifecycleHooks(hooks))
	}
}

// WithEntryNode overrides the initial node id (default 1).
func WithEntryNode(id int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithEntryNode(id))
	}
}

// New initializes a Guidepost Engine. With an empty scriptDir (and no
// WithCatalog option) the embedded default script is used; otherwise the
// directory's YAML files are loaded and validated. Loading is eager and
// total: a broken script fails here, never mid-session.
func New(scriptDir string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.catalog == nil {
		var (
			cat *catalog.Catalog
			err error
		)
		if scriptDir == "" {
			cat, err = catalog.LoadFS(content.Files())
		} else {
			cat, err = catalog.Load(scriptDir)
		}
		if err != nil {
			return nil, err
		}
		eng.catalog = cat
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	runtimeOpts := append([]runtime.EngineOption{runtime.WithLogger(eng.logger)}, eng.runtimeOpts...)
	eng.runtime = runtime.NewEngine(eng.catalog, runtimeOpts...)
	return eng, nil
}

// Start creates a fresh session in the given language and renders the entry
// node. The returned entries are the newly appended transcript.
func (e *Engine) Start(ctx context.Context, lang domain.Language) (*domain.Session, []domain.TranscriptEntry, error) {
	s := domain.NewSession(uuid.NewString(), lang)
	entries, err := e.runtime.Start(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	return s, entries, nil
}

// Restart switches languages by starting over: in-progress ledger state from
// one language must never feed another language's resolver, so a mid-session
// switch always yields a fresh session at the entry node.
func (e *Engine) Restart(ctx context.Context, lang domain.Language) (*domain.Session, []domain.TranscriptEntry, error) {
	return e.Start(ctx, lang)
}

// SubmitChoice advances one button-driven turn and returns the newly
// appended transcript entries. An empty slice with a nil error means the
// end-of-script sentinel was selected; check s.Ended().
func (e *Engine) SubmitChoice(ctx context.Context, s *domain.Session, value string) ([]domain.TranscriptEntry, error) {
	return e.runtime.SubmitChoice(ctx, s, value)
}

// SubmitText advances one free-text turn. Empty or whitespace-only input
// returns domain.ErrInputRejected with no state change.
func (e *Engine) SubmitText(ctx context.Context, s *domain.Session, text string) ([]domain.TranscriptEntry, error) {
	return e.runtime.SubmitText(ctx, s, text)
}

// Transcript returns a read-only snapshot of the session's rendered history.
func (e *Engine) Transcript(s *domain.Session) []domain.TranscriptEntry {
	out := make([]domain.TranscriptEntry, len(s.Transcript))
	copy(out, s.Transcript)
	return out
}

// Languages lists the catalog's loaded languages.
func (e *Engine) Languages() []domain.Language {
	return e.catalog.Languages()
}

// Inspect returns one language's full script for visualization and
// validation tooling.
func (e *Engine) Inspect(lang domain.Language) ([]domain.Node, error) {
	return e.catalog.Nodes(lang)
}

// Rules returns the branch rules in precedence order.
func (e *Engine) Rules() []domain.BranchRule {
	return e.catalog.Rules()
}

// Catalog returns the underlying catalog used by the engine.
func (e *Engine) Catalog() ports.Catalog {
	return e.catalog
}

// Close flushes the narration queue and releases engine resources.
func (e *Engine) Close() {
	e.runtime.Close()
}
