package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	// ScrollFields is the number of fields scroll mode rotates through: title, price, button text.
	ScrollFields = 3
	// ScrollInterval is the wall-clock time each field stays visible.
	ScrollInterval = time.Second
)

// Scroll indexes.
const (
	ScrollTitle = iota
	ScrollPrice
	ScrollButton
)

// cycler advances one overlay's scroll index on a ticker until stopped.
type cycler struct {
	id        string
	clock     clockwork.Clock
	interval  time.Duration
	onAdvance func(id string)
	mu        sync.Mutex
	index     int
	cancel    context.CancelFunc
	done      chan struct{}
}

func (c *cycler) start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(ctx)
}

func (c *cycler) stop() {
	c.cancel()
	<-c.done
}

func (c *cycler) current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

func (c *cycler) run(ctx context.Context) {
	defer close(c.done)
	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			c.mu.Lock()
			c.index = (c.index + 1) % ScrollFields
			c.mu.Unlock()
			if c.onAdvance != nil {
				c.onAdvance(c.id)
			}
		}
	}
}

// ScrollRegistry holds the running scroll cyclers of one player session, keyed by OverlayKey.
type ScrollRegistry struct {
	clock     clockwork.Clock
	interval  time.Duration
	onAdvance func(id string)
	logger    *zap.Logger
	mu        sync.Mutex
	cyclers   map[string]*cycler
}

// NewScrollRegistry creates an empty registry. onAdvance is called from cycler goroutines
// after an index changes and must not block.
func NewScrollRegistry(clock clockwork.Clock, onAdvance func(id string), logger *zap.Logger) *ScrollRegistry {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScrollRegistry{
		clock:     clock,
		interval:  ScrollInterval,
		onAdvance: onAdvance,
		logger:    logger,
		cyclers:   make(map[string]*cycler),
	}
}

// Register starts a cycler for id. Registering a tracked id keeps its phase and returns false.
func (reg *ScrollRegistry) Register(id string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.cyclers[id] != nil {
		return false
	}
	c := &cycler{
		id:        id,
		clock:     reg.clock,
		interval:  reg.interval,
		onAdvance: reg.onAdvance,
		done:      make(chan struct{}),
	}
	reg.cyclers[id] = c
	c.start()
	reg.logger.Debug("scroll cycle registered", zap.String("overlay", id))
	return true
}

// Unregister stops the cycler for id and forgets its phase.
func (reg *ScrollRegistry) Unregister(id string) {
	reg.mu.Lock()
	c := reg.cyclers[id]
	delete(reg.cyclers, id)
	reg.mu.Unlock()
	if c != nil {
		c.stop()
		reg.logger.Debug("scroll cycle unregistered", zap.String("overlay", id))
	}
}

// Sync makes the tracked set equal to ids: new ids are registered, missing ones unregistered.
func (reg *ScrollRegistry) Sync(ids []string) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	reg.mu.Lock()
	var stale []string
	for id := range reg.cyclers {
		if _, ok := want[id]; !ok {
			stale = append(stale, id)
		}
	}
	reg.mu.Unlock()

	for _, id := range stale {
		reg.Unregister(id)
	}
	for _, id := range ids {
		reg.Register(id)
	}
}

// Index returns the current scroll index for id, or ScrollTitle when id is not tracked.
func (reg *ScrollRegistry) Index(id string) int {
	reg.mu.Lock()
	c := reg.cyclers[id]
	reg.mu.Unlock()
	if c == nil {
		return ScrollTitle
	}
	return c.current()
}

// Len returns the number of running cyclers.
func (reg *ScrollRegistry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.cyclers)
}

// Close stops every cycler.
func (reg *ScrollRegistry) Close() {
	reg.mu.Lock()
	all := reg.cyclers
	reg.cyclers = make(map[string]*cycler)
	reg.mu.Unlock()
	for _, c := range all {
		c.stop()
	}
}
