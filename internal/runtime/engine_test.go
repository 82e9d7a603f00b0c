package runtime_test

import (
	"context"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanfield/guidepost/internal/runtime"
	"github.com/evanfield/guidepost/pkg/catalog"
	"github.com/evanfield/guidepost/pkg/domain"
	"github.com/evanfield/guidepost/pkg/ports"
)

// testScript is a compressed screening flow: an intro, a two-item block with
// a score gate, a crisis loop reachable only through the gate, a free-text
// node and a terminal node.
const testScript = `
language: en
nodes:
  - id: 1
    lines: ["Welcome."]
    milestone: screen1
    choices:
      - label: "Start"
        to: 2
  - id: 2
    lines: ["Item one?"]
    choices:
      - label: "0"
        to: 3
      - label: "3"
        to: 3
  - id: 3
    lines: ["Item two?"]
    choices:
      - label: "0"
        to: 5
      - label: "3"
        to: 5
  - id: 4
    lines: ["Are you safe right now?"]
    choices:
      - label: "Yes"
        to: 5
      - label: "No"
        to: 4
  - id: 5
    lines: ["Tell me how your week went."]
    free_text: true
  - id: 6
    lines: ["Thanks for sharing."]
    choices:
      - label: "Continue"
        to: 7
      - label: "Stop here"
        to: -1
  - id: 7
    lines: ["Take care."]
`

const testRules = `
rules:
  - type: score_gate
    items: [2, 3]
    threshold: 4
    below: 5
    at_or_above: 4
`

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	fsys := fstest.MapFS{
		"en.yaml":    &fstest.MapFile{Data: []byte(testScript)},
		"rules.yaml": &fstest.MapFile{Data: []byte(testRules)},
	}
	cat, err := catalog.LoadFS(fsys)
	require.NoError(t, err)
	return cat
}

func TestEngine_StartRendersEntry(t *testing.T) {
	engine := runtime.NewEngine(newTestCatalog(t))
	s := domain.NewSession("t1", "en")

	entries, err := engine.Start(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, domain.EntryNode, entries[0].Kind)
	assert.Equal(t, 1, entries[0].NodeID)
	assert.Equal(t, []string{"Welcome."}, entries[0].Lines)
	assert.Equal(t, []string{"Start"}, entries[0].Options)
	assert.Equal(t, domain.StatusAwaitingChoice, s.Status)
}

func TestEngine_ChoiceTurn(t *testing.T) {
	engine := runtime.NewEngine(newTestCatalog(t))
	s := domain.NewSession("t2", "en")
	ctx := context.Background()

	_, err := engine.Start(ctx, s)
	require.NoError(t, err)

	entries, err := engine.SubmitChoice(ctx, s, "Start")
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].NodeID)
	assert.Equal(t, 2, s.CurrentID)

	a, ok := s.Ledger.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Start", a.Raw)
}

func TestEngine_UnknownChoiceLeavesStateUntouched(t *testing.T) {
	engine := runtime.NewEngine(newTestCatalog(t))
	s := domain.NewSession("t3", "en")
	ctx := context.Background()

	_, err := engine.Start(ctx, s)
	require.NoError(t, err)
	before := s.Snapshot()

	_, err = engine.SubmitChoice(ctx, s, "Nope")
	assert.ErrorIs(t, err, domain.ErrUnknownChoice)

	assert.Equal(t, before.CurrentID, s.CurrentID)
	assert.Equal(t, before.Status, s.Status)
	assert.Len(t, s.Transcript, len(before.Transcript))
	assert.Len(t, s.Ledger, len(before.Ledger))
}

func TestEngine_ScoreGateRouting(t *testing.T) {
	t.Run("Low score skips the crisis node", func(t *testing.T) {
		engine := runtime.NewEngine(newTestCatalog(t))
		s := domain.NewSession("g1", "en")
		ctx := context.Background()

		_, err := engine.Start(ctx, s)
		require.NoError(t, err)
		_, err = engine.SubmitChoice(ctx, s, "Start")
		require.NoError(t, err)
		_, err = engine.SubmitChoice(ctx, s, "0")
		require.NoError(t, err)

		entries, err := engine.SubmitChoice(ctx, s, "3")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 5, entries[0].NodeID)
		assert.Equal(t, domain.StatusAwaitingFreeText, s.Status)
	})

	t.Run("High score routes to the crisis node", func(t *testing.T) {
		engine := runtime.NewEngine(newTestCatalog(t))
		s := domain.NewSession("g2", "en")
		ctx := context.Background()

		_, err := engine.Start(ctx, s)
		require.NoError(t, err)
		_, err = engine.SubmitChoice(ctx, s, "Start")
		require.NoError(t, err)
		_, err = engine.SubmitChoice(ctx, s, "3")
		require.NoError(t, err)

		entries, err := engine.SubmitChoice(ctx, s, "3")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 4, entries[0].NodeID)
	})
}

func TestEngine_CrisisSelfLoop(t *testing.T) {
	engine := runtime.NewEngine(newTestCatalog(t))
	s := domain.NewSession("c1", "en")
	ctx := context.Background()

	_, err := engine.Start(ctx, s)
	require.NoError(t, err)
	_, err = engine.SubmitChoice(ctx, s, "Start")
	require.NoError(t, err)
	_, err = engine.SubmitChoice(ctx, s, "3")
	require.NoError(t, err)
	_, err = engine.SubmitChoice(ctx, s, "3")
	require.NoError(t, err)
	require.Equal(t, 4, s.CurrentID)

	// The session holds on the crisis node as long as the answer is No.
	for i := 0; i < 5; i++ {
		entries, err := engine.SubmitChoice(ctx, s, "No")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 4, entries[0].NodeID)
		assert.Equal(t, 4, s.CurrentID)
	}

	_, err = engine.SubmitChoice(ctx, s, "Yes")
	require.NoError(t, err)
	assert.Equal(t, 5, s.CurrentID)
}

func TestEngine_FreeTextTurn(t *testing.T) {
	engine := runtime.NewEngine(newTestCatalog(t))
	s := domain.NewSession("f1", "en")
	ctx := context.Background()

	_, err := engine.Start(ctx, s)
	require.NoError(t, err)
	_, err = engine.SubmitChoice(ctx, s, "Start")
	require.NoError(t, err)
	_, err = engine.SubmitChoice(ctx, s, "0")
	require.NoError(t, err)
	_, err = engine.SubmitChoice(ctx, s, "0")
	require.NoError(t, err)
	require.Equal(t, domain.StatusAwaitingFreeText, s.Status)

	t.Run("Empty input rejected", func(t *testing.T) {
		_, err := engine.SubmitText(ctx, s, "")
		assert.ErrorIs(t, err, domain.ErrInputRejected)
		assert.Equal(t, 5, s.CurrentID)
	})

	t.Run("Whitespace input rejected", func(t *testing.T) {
		_, err := engine.SubmitText(ctx, s, "   ")
		assert.ErrorIs(t, err, domain.ErrInputRejected)
		assert.Equal(t, 5, s.CurrentID)
	})

	t.Run("Choice input rejected on a text turn", func(t *testing.T) {
		_, err := engine.SubmitChoice(ctx, s, "Continue")
		assert.ErrorIs(t, err, domain.ErrInputRejected)
	})

	t.Run("Text advances to the adjacent node", func(t *testing.T) {
		entries, err := engine.SubmitText(ctx, s, "It was a rough week.")
		require.NoError(t, err)

		require.Len(t, entries, 2)
		assert.Equal(t, domain.EntryUser, entries[0].Kind)
		assert.Equal(t, "It was a rough week.", entries[0].UserText)
		assert.Equal(t, domain.EntryNode, entries[1].Kind)
		assert.Equal(t, 6, entries[1].NodeID)

		a, ok := s.Ledger.Get(5)
		require.True(t, ok)
		assert.Equal(t, "It was a rough week.", a.Raw)
		assert.False(t, a.Numeric)
	})
}

func TestEngine_EndSentinel(t *testing.T) {
	engine := runtime.NewEngine(newTestCatalog(t))
	s := domain.NewSession("end1", "en")
	ctx := context.Background()

	_, err := engine.Start(ctx, s)
	require.NoError(t, err)
	_, err = engine.SubmitChoice(ctx, s, "Start")
	require.NoError(t, err)
	_, err = engine.SubmitChoice(ctx, s, "0")
	require.NoError(t, err)
	_, err = engine.SubmitChoice(ctx, s, "0")
	require.NoError(t, err)
	_, err = engine.SubmitText(ctx, s, "fine")
	require.NoError(t, err)

	entries, err := engine.SubmitChoice(ctx, s, "Stop here")
	require.NoError(t, err)
	assert.Empty(t, entries, "the sentinel ends the session without rendering")
	assert.True(t, s.Ended())

	_, err = engine.SubmitChoice(ctx, s, "Stop here")
	assert.ErrorIs(t, err, domain.ErrSessionEnded)
	_, err = engine.SubmitText(ctx, s, "more")
	assert.ErrorIs(t, err, domain.ErrSessionEnded)
}

func TestEngine_TerminalNodeEndsSession(t *testing.T) {
	engine := runtime.NewEngine(newTestCatalog(t))
	s := domain.NewSession("end2", "en")
	ctx := context.Background()

	_, err := engine.Start(ctx, s)
	require.NoError(t, err)
	_, err = engine.SubmitChoice(ctx, s, "Start")
	require.NoError(t, err)
	_, err = engine.SubmitChoice(ctx, s, "0")
	require.NoError(t, err)
	_, err = engine.SubmitChoice(ctx, s, "0")
	require.NoError(t, err)
	_, err = engine.SubmitText(ctx, s, "fine")
	require.NoError(t, err)

	entries, err := engine.SubmitChoice(ctx, s, "Continue")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 7, entries[0].NodeID)
	assert.True(t, s.Ended(), "a node without choices or free text is terminal")
}

func TestEngine_TranscriptIsAppendOnly(t *testing.T) {
	engine := runtime.NewEngine(newTestCatalog(t))
	s := domain.NewSession("tr1", "en")
	ctx := context.Background()

	_, err := engine.Start(ctx, s)
	require.NoError(t, err)

	var prefix []domain.TranscriptEntry
	check := func() {
		require.GreaterOrEqual(t, len(s.Transcript), len(prefix))
		for i := range prefix {
			assert.Equal(t, prefix[i], s.Transcript[i], "existing entries never change")
		}
		prefix = append(prefix[:0:0], s.Transcript...)
	}

	check()
	for _, value := range []string{"Start", "3", "3", "No", "Yes"} {
		_, err := engine.SubmitChoice(ctx, s, value)
		require.NoError(t, err)
		check()
	}
	_, err = engine.SubmitText(ctx, s, "getting by")
	require.NoError(t, err)
	check()
}

func TestEngine_MilestoneRecordedOnce(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	clock := ports.ClockFunc(func() time.Time { return now })

	engine := runtime.NewEngine(newTestCatalog(t), runtime.WithClock(clock))
	s := domain.NewSession("m1", "en")

	_, err := engine.Start(context.Background(), s)
	require.NoError(t, err)

	stamp, ok := s.Milestones["screen1"]
	require.True(t, ok)
	assert.Equal(t, now, stamp)
}

func TestEngine_ElapsedSkipEndToEnd(t *testing.T) {
	const rules = `
rules:
  - type: elapsed_skip
    on_target: 3
    first: visit1
    second: visit2
    within_hours: 24
    skip_to: 4
`
	const script = `
language: en
nodes:
  - id: 1
    lines: ["First visit."]
    milestone: visit1
    choices:
      - label: "Next"
        to: 2
  - id: 2
    lines: ["Second visit."]
    milestone: visit2
    choices:
      - label: "Next"
        to: 3
  - id: 3
    lines: ["Full re-screen."]
    choices:
      - label: "Done"
        to: 4
  - id: 4
    lines: ["Closing."]
`
	load := func(t *testing.T) *catalog.Catalog {
		fsys := fstest.MapFS{
			"en.yaml":    &fstest.MapFile{Data: []byte(script)},
			"rules.yaml": &fstest.MapFile{Data: []byte(rules)},
		}
		cat, err := catalog.LoadFS(fsys)
		require.NoError(t, err)
		return cat
	}

	run := func(t *testing.T, gap time.Duration) *domain.Session {
		now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
		clock := ports.ClockFunc(func() time.Time { return now })

		engine := runtime.NewEngine(load(t), runtime.WithClock(clock))
		s := domain.NewSession("skip", "en")
		ctx := context.Background()

		_, err := engine.Start(ctx, s)
		require.NoError(t, err)

		now = now.Add(gap)
		_, err = engine.SubmitChoice(ctx, s, "Next")
		require.NoError(t, err)
		_, err = engine.SubmitChoice(ctx, s, "Next")
		require.NoError(t, err)
		return s
	}

	t.Run("Short gap skips the re-screen", func(t *testing.T) {
		s := run(t, 3*time.Hour)
		assert.Equal(t, 4, s.CurrentID)
		assert.True(t, s.Ended())
	})

	t.Run("Long gap runs the re-screen", func(t *testing.T) {
		s := run(t, 30*time.Hour)
		assert.Equal(t, 3, s.CurrentID)
		assert.Equal(t, domain.StatusAwaitingChoice, s.Status)
	})
}

func TestEngine_NarrationOrderAndDelivery(t *testing.T) {
	var mu sync.Mutex
	var spoken [][]string
	narrator := ports.NarratorFunc(func(lines []string) {
		mu.Lock()
		defer mu.Unlock()
		spoken = append(spoken, lines)
	})

	engine := runtime.NewEngine(newTestCatalog(t), runtime.WithNarrator(narrator))
	s := domain.NewSession("n1", "en")
	ctx := context.Background()

	_, err := engine.Start(ctx, s)
	require.NoError(t, err)
	_, err = engine.SubmitChoice(ctx, s, "Start")
	require.NoError(t, err)
	_, err = engine.SubmitChoice(ctx, s, "0")
	require.NoError(t, err)

	// Close drains the queue, so after it returns everything queued so far
	// has been spoken.
	engine.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, spoken, 3, "each pushed node is narrated exactly once")
	assert.Equal(t, []string{"Welcome."}, spoken[0])
	assert.Equal(t, []string{"Item one?"}, spoken[1])
	assert.Equal(t, []string{"Item two?"}, spoken[2])
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var entered []int
	var branches []*domain.BranchEvent
	ended := 0

	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			entered = append(entered, e.NodeID)
		},
		OnBranch: func(_ context.Context, e *domain.BranchEvent) {
			branches = append(branches, e)
		},
		OnSessionEnd: func(_ context.Context, e *domain.SessionEvent) {
			ended++
		},
	}

	engine := runtime.NewEngine(newTestCatalog(t), runtime.WithLifecycleHooks(hooks))
	s := domain.NewSession("h1", "en")
	ctx := context.Background()

	_, err := engine.Start(ctx, s)
	require.NoError(t, err)
	for _, value := range []string{"Start", "3", "3", "Yes"} {
		_, err := engine.SubmitChoice(ctx, s, value)
		require.NoError(t, err)
	}
	_, err = engine.SubmitText(ctx, s, "okay")
	require.NoError(t, err)
	_, err = engine.SubmitChoice(ctx, s, "Stop here")
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, entered)
	require.Len(t, branches, 1)
	assert.Equal(t, domain.RuleKindScoreGate, branches[0].RuleKind)
	assert.Equal(t, 5, branches[0].Declared)
	assert.Equal(t, 4, branches[0].Resolved)
	assert.Equal(t, 1, ended)
}
