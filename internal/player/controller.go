// Package player runs embed player sessions: it loads a video, tracks playback time
// and keeps the product overlay layer of one container in sync with it.
package player

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/shoppable-video/backend/internal/analytics"
	"github.com/shoppable-video/backend/internal/carousel"
	"github.com/shoppable-video/backend/internal/catalog"
	"github.com/shoppable-video/backend/internal/metrics"
	"github.com/shoppable-video/backend/internal/models"
	"github.com/shoppable-video/backend/internal/overlay"
	"github.com/shoppable-video/backend/internal/schedule"
)

// LoadErrorMessage is shown inline when the video cannot be loaded.
const LoadErrorMessage = "Failed to load video. Check console for details."

const eventBuffer = 64

// Options are the embed init options passed by the host page.
type Options struct {
	ContainerID string `json:"containerId"`
	VideoID     string `json:"videoId"`
	APIURL      string `json:"apiUrl"`
}

// Catalog loads the read-only video and product data a session needs.
type Catalog interface {
	Video(ctx context.Context, id string) (*models.Video, error)
	Product(ctx context.Context, id string) (*models.Product, error)
}

// Deps are the collaborators of a session. Only Host is required.
type Deps struct {
	Host      Host
	Catalog   Catalog           // defaults to a catalog.Client on Options.APIURL
	Emitter   analytics.Emitter // defaults to an HTTPEmitter on Options.APIURL
	Clock     clockwork.Clock
	Scheduler schedule.Scheduler
	Logger    *zap.Logger
	OnState   func(State) // called from the event loop after every transition
}

// Controller is one player session. All session state is owned by a single
// event loop goroutine; inputs and async completions are posted to it.
type Controller struct {
	opts    Options
	catalog Catalog
	emitter analytics.Emitter
	sched   schedule.Scheduler
	logger  *zap.Logger
	onState func(State)

	state    atomic.Int32
	events   chan func()
	scrollCh chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once

	// event loop only
	host     Host
	surface  Surface
	video    *models.Video
	cfg      carousel.Config
	current  float64
	viewed   bool
	products map[string]*models.Product
	pending  map[string]bool
	rendered []Overlay
	scroll   *schedule.ScrollRegistry
}

// Init starts a session and begins loading the video. It never fails: problems
// are logged and reflected in State and on the container.
func Init(opts Options, deps Deps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("video_id", opts.VideoID), zap.String("container_id", opts.ContainerID))

	cat := deps.Catalog
	if cat == nil {
		cat = catalog.NewClient(opts.APIURL, nil, 0)
	}
	emitter := deps.Emitter
	if emitter == nil {
		emitter = analytics.NewHTTPEmitter(analytics.EmitterConfig{
			APIURL:  opts.APIURL,
			VideoID: opts.VideoID,
			Clock:   deps.Clock,
		}, logger)
	}
	sched := deps.Scheduler
	if sched.Tail <= 0 {
		sched = schedule.New(sched.Tail)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		opts:     opts,
		catalog:  cat,
		emitter:  emitter,
		sched:    sched,
		logger:   logger,
		onState:  deps.OnState,
		events:   make(chan func(), eventBuffer),
		scrollCh: make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		host:     deps.Host,
		products: make(map[string]*models.Product),
		pending:  make(map[string]bool),
	}
	c.scroll = schedule.NewScrollRegistry(deps.Clock, c.scrollAdvanced, logger)

	go c.run()
	c.post(c.start)
	return c
}

// State returns the current lifecycle state. Safe from any goroutine.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Play reports that playback started or resumed.
func (c *Controller) Play() {
	c.post(c.play)
}

// Pause reports that playback paused.
func (c *Controller) Pause() {
	c.post(c.pause)
}

// TimeUpdate reports the media element's current time in seconds.
func (c *Controller) TimeUpdate(t float64) {
	c.post(func() { c.timeUpdate(t) })
}

// Click reports a click on the overlay of placementID.
func (c *Controller) Click(placementID string) {
	c.post(func() { c.click(placementID) })
}

// Destroy stops every scroll timer, abandons in-flight fetches and waits for
// pending analytics. Safe to call more than once.
func (c *Controller) Destroy() {
	c.post(c.teardown)
	<-c.done
	if closer, ok := c.emitter.(interface{ Close() }); ok {
		closer.Close()
	}
}

// Done is closed once the session has been destroyed.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) post(fn func()) {
	select {
	case c.events <- fn:
	case <-c.ctx.Done():
	}
}

func (c *Controller) run() {
	defer close(c.done)
	for {
		select {
		case <-c.ctx.Done():
			return
		case fn := <-c.events:
			fn()
		case <-c.scrollCh:
			if c.State().loaded() && c.cfg.EnableScroll {
				c.redraw()
			}
		}
	}
}

// scrollAdvanced runs on cycler goroutines; it only nudges the loop.
func (c *Controller) scrollAdvanced(string) {
	select {
	case c.scrollCh <- struct{}{}:
	default:
	}
}

func (c *Controller) setState(s State) {
	if State(c.state.Swap(int32(s))) == s {
		return
	}
	c.logger.Debug("player state changed", zap.Stringer("state", s))
	if c.onState != nil {
		c.onState(s)
	}
}

func (c *Controller) start() {
	if c.State() != StateUninitialized {
		return
	}
	surface, ok := c.lookupContainer()
	if !ok {
		c.logger.Error("player container not found")
		metrics.SessionsFailed.WithLabelValues("container_not_found").Inc()
		c.setState(StateError)
		return
	}
	c.surface = surface
	c.setState(StateLoading)

	go func() {
		video, err := c.catalog.Video(c.ctx, c.opts.VideoID)
		c.post(func() { c.videoLoaded(video, err) })
	}()
}

func (c *Controller) lookupContainer() (Surface, bool) {
	if c.host == nil || c.opts.ContainerID == "" {
		return nil, false
	}
	return c.host.Container(c.opts.ContainerID)
}

func (c *Controller) videoLoaded(video *models.Video, err error) {
	if c.State() != StateLoading {
		return
	}
	if err == nil && video == nil {
		err = errors.New("empty video response")
	}
	if err != nil {
		reason := "video_fetch"
		if errors.Is(err, catalog.ErrNotFound) {
			reason = "video_not_found"
		}
		c.logger.Error("failed to load video", zap.Error(err))
		metrics.SessionsFailed.WithLabelValues(reason).Inc()
		c.surface.ShowError(LoadErrorMessage)
		c.setState(StateError)
		return
	}

	c.video = video
	c.cfg = carousel.Resolve(video.CarouselConfig)
	c.surface.MountVideo(Mount{VideoURL: video.VideoURL, Duration: video.Duration, Controls: true})
	c.setState(StateReady)
	c.logger.Info("video loaded",
		zap.Int("placements", len(video.ProductPlacements)),
		zap.Bool("scroll", c.cfg.EnableScroll),
	)
}

func (c *Controller) play() {
	switch c.State() {
	case StateReady, StatePaused, StatePlaying:
	default:
		return
	}
	if !c.viewed {
		c.viewed = true
		c.emitter.Emit(models.EventView, "")
	}
	c.setState(StatePlaying)
}

func (c *Controller) pause() {
	if c.State() == StatePlaying {
		c.setState(StatePaused)
	}
}

func (c *Controller) timeUpdate(t float64) {
	if !c.State().loaded() {
		return
	}
	c.current = t
	c.redraw()
}

// redraw recomputes the whole overlay layer for the current time.
func (c *Controller) redraw() {
	active := c.sched.Active(c.video, c.cfg, c.current)

	if c.cfg.EnableScroll {
		keys := make([]string, 0, len(active))
		for _, p := range active {
			keys = append(keys, schedule.OverlayKey(c.video.ID, p))
		}
		c.scroll.Sync(keys)
	}

	frame := Frame{At: c.current, Overlays: make([]Overlay, 0, len(active))}
	for _, p := range active {
		product, ok := c.products[p.ProductID]
		if !ok {
			c.fetchProduct(p.ProductID)
			continue
		}
		key := schedule.OverlayKey(c.video.ID, p)
		index := schedule.ScrollTitle
		if c.cfg.EnableScroll {
			index = c.scroll.Index(key)
		}
		frame.Overlays = append(frame.Overlays, Overlay{
			PlacementID: p.ID,
			ProductID:   p.ProductID,
			Key:         key,
			Node:        overlay.Render(product, c.cfg, index),
		})
	}

	c.rendered = frame.Overlays
	c.surface.ReplaceOverlay(frame)
	metrics.OverlayFrames.Inc()
}

// fetchProduct loads a product in the background. The result is cached for
// the rest of the session and picked up by the next redraw.
func (c *Controller) fetchProduct(id string) {
	if c.pending[id] {
		return
	}
	c.pending[id] = true

	go func() {
		product, err := c.catalog.Product(c.ctx, id)
		c.post(func() { c.productLoaded(id, product, err) })
	}()
}

func (c *Controller) productLoaded(id string, product *models.Product, err error) {
	delete(c.pending, id)
	if err == nil && product == nil {
		err = errors.New("empty product response")
	}
	if err != nil {
		c.logger.Warn("failed to load product", zap.String("product_id", id), zap.Error(err))
		metrics.ProductFetchFailures.Inc()
		return
	}
	c.products[id] = product
	if c.State().loaded() {
		c.redraw()
	}
}

func (c *Controller) click(placementID string) {
	for _, o := range c.rendered {
		if o.PlacementID != placementID {
			continue
		}
		product := c.products[o.ProductID]
		if product == nil {
			return
		}
		c.emitter.Emit(models.EventProductClick, o.ProductID)
		c.surface.Open(product.URL)
		return
	}
	c.logger.Debug("click on overlay that is not shown", zap.String("placement_id", placementID))
}

func (c *Controller) teardown() {
	c.stopOnce.Do(func() {
		c.scroll.Close()
		c.rendered = nil
		c.setState(StateDestroyed)
		c.cancel()
		c.logger.Info("player destroyed")
	})
}
