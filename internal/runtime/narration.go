package runtime

import (
	"log/slog"
	"sync"

	"github.com/evanfield/guidepost/pkg/ports"
)

// queueDepth bounds how many unspoken node texts may pile up before entries
// are dropped. Narration is cosmetic; a slow sink must never delay a turn.
const queueDepth = 64

// dispatcher feeds the narration sink from a single goroutine so entries
// arrive in push order, while the engine side never blocks: enqueue is a
// non-blocking send and overflow is dropped with a warning.
type dispatcher struct {
	sink   ports.Narrator
	queue  chan []string
	logger *slog.Logger

	wg     sync.WaitGroup
	closed sync.Once
}

func newDispatcher(sink ports.Narrator, logger *slog.Logger) *dispatcher {
	d := &dispatcher{
		sink:   sink,
		queue:  make(chan []string, queueDepth),
		logger: logger,
	}
	d.wg.Add(1)
	go d.drain()
	return d
}

func (d *dispatcher) drain() {
	defer d.wg.Done()
	for lines := range d.queue {
		d.sink.Speak(lines)
	}
}

func (d *dispatcher) enqueue(lines []string) {
	select {
	case d.queue <- lines:
	default:
		d.logger.Warn("narration queue full, dropping entry", "lines", len(lines))
	}
}

// close stops accepting entries and waits for queued ones to be spoken.
func (d *dispatcher) close() {
	d.closed.Do(func() {
		close(d.queue)
		d.wg.Wait()
	})
}
