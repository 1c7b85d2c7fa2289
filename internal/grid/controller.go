// Package grid owns the shortcut collection and every interaction that
// changes it: mutations, drag gestures, folder sessions and paging.
//
// All entry points serialize on one mutex. Timer callbacks take the same
// mutex and carry the generation of the session that scheduled them, so a
// callback whose session has ended does nothing.
package grid

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nikbrunner/newtab/internal/model"
	"github.com/nikbrunner/newtab/internal/pager"
	"github.com/nikbrunner/newtab/internal/storage"
)

// Timings holds the gesture thresholds. Zero fields fall back to DefaultTimings.
type Timings struct {
	OpenFolderDwell time.Duration // link held over a folder
	MergeDwell      time.Duration // link held over a link
	EdgeMargin      float64       // grid edge band that triggers auto paging
	AutoPageDelay   time.Duration
	PageButtonDelay time.Duration // drag held over a page arrow
	PageCooldown    time.Duration // page arrow delay right after a page change
	FolderCooldown  time.Duration // exit detection is off this long after open
	ExitPadding     float64
	ExitDelay       time.Duration
}

// DefaultTimings returns the stock thresholds.
func DefaultTimings() Timings {
	return Timings{
		OpenFolderDwell: 500 * time.Millisecond,
		MergeDwell:      400 * time.Millisecond,
		EdgeMargin:      60,
		AutoPageDelay:   500 * time.Millisecond,
		PageButtonDelay: 250 * time.Millisecond,
		PageCooldown:    400 * time.Millisecond,
		FolderCooldown:  800 * time.Millisecond,
		ExitPadding:     20,
		ExitDelay:       600 * time.Millisecond,
	}
}

func (t Timings) withDefaults() Timings {
	d := DefaultTimings()
	if t.OpenFolderDwell <= 0 {
		t.OpenFolderDwell = d.OpenFolderDwell
	}
	if t.MergeDwell <= 0 {
		t.MergeDwell = d.MergeDwell
	}
	if t.EdgeMargin <= 0 {
		t.EdgeMargin = d.EdgeMargin
	}
	if t.AutoPageDelay <= 0 {
		t.AutoPageDelay = d.AutoPageDelay
	}
	if t.PageButtonDelay <= 0 {
		t.PageButtonDelay = d.PageButtonDelay
	}
	if t.PageCooldown <= 0 {
		t.PageCooldown = d.PageCooldown
	}
	if t.FolderCooldown <= 0 {
		t.FolderCooldown = d.FolderCooldown
	}
	if t.ExitPadding <= 0 {
		t.ExitPadding = d.ExitPadding
	}
	if t.ExitDelay <= 0 {
		t.ExitDelay = d.ExitDelay
	}
	return t
}

// Params configures a Controller.
type Params struct {
	// Store persists the collection. Nil keeps everything in memory.
	Store     storage.Store
	Layout    pager.Layout
	Timings   Timings
	Scheduler Scheduler
	Logger    zerolog.Logger
}

// Snapshot is everything a front-end needs to draw the grid.
type Snapshot struct {
	Items      model.Collection
	Layout     pager.Layout
	Page       int
	TotalPages int
	Pages      [][]pager.Slot
	Drag       DragInfo
	Folder     FolderInfo
}

// Controller is the single owner of the shortcut collection.
type Controller struct {
	mu      sync.Mutex
	items   model.Collection
	pager   *pager.Pager
	timings Timings
	sched   Scheduler
	log     zerolog.Logger
	store   storage.Store
	persist *persister

	drag          dragSession
	folder        folderSession
	autoPage      autoPager
	overlayBounds Rect

	listeners    map[int]func(Snapshot)
	nextListener int
}

// New creates a Controller with an empty collection. Call Load to read the store.
func New(params Params) *Controller {
	sched := params.Scheduler
	if sched == nil {
		sched = SystemScheduler{}
	}

	c := &Controller{
		items:     model.Collection{},
		pager:     pager.New(params.Layout),
		timings:   params.Timings.withDefaults(),
		sched:     sched,
		log:       params.Logger,
		store:     params.Store,
		persist:   newPersister(params.Store, params.Logger),
		listeners: make(map[int]func(Snapshot)),
	}
	c.drag.reset()
	c.pager.OnChange(func(int) {
		c.autoPage.lastChange = c.sched.Now()
	})
	return c
}

// Load replaces the collection with the stored one. A missing key loads empty.
func (c *Controller) Load(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	items, err := storage.LoadCollection(ctx, c.store)
	if err != nil {
		return fmt.Errorf("load shortcuts: %w", err)
	}

	next := normalized(items)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.installLocked(next)
	c.log.Debug().Int("items", len(next)).Msg("shortcuts loaded")
	return nil
}

// Run applies external changes to the shortcuts key until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	if c.store == nil {
		<-ctx.Done()
		return nil
	}
	changes, err := c.store.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to store: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ch, ok := <-changes:
			if !ok {
				return nil
			}
			if ch.Key != storage.KeyShortcuts {
				continue
			}
			items, err := storage.DecodeCollection(ch.Value)
			if err != nil {
				c.log.Warn().Err(err).Msg("ignoring unreadable external shortcuts change")
				continue
			}
			if c.ReplaceAll(items) {
				c.log.Info().Int("items", len(items)).Msg("shortcuts replaced by external change")
			}
		}
	}
}

// Subscribe registers fn to receive a Snapshot after every state change.
// fn runs with the controller locked and must not call back into it.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Items returns a deep copy of the collection.
func (c *Controller) Items() model.Collection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Clone()
}

// Flush waits until queued writes reach the store.
func (c *Controller) Flush() {
	c.persist.flush()
}

// ReplaceAll installs items as the new collection without persisting them.
// It is the entry point for changes that arrived from the store. Any drag or
// open folder is cancelled. Returns false if items equal the current collection.
func (c *Controller) ReplaceAll(items model.Collection) bool {
	next := normalized(items)

	c.mu.Lock()
	defer c.mu.Unlock()
	if next.Equal(c.items) {
		return false
	}
	c.installLocked(next)
	return true
}

// installLocked swaps in a collection read from the store. Sessions are
// cancelled and nothing is written back.
func (c *Controller) installLocked(next model.Collection) {
	c.resetSessionsLocked()
	c.items = next
	c.commitLocked(false)
}

// normalized returns a copy of items with the collapse rule applied.
func normalized(items model.Collection) model.Collection {
	next := items.Clone()
	next.Normalize()
	return next
}

// SetLayout applies new layout settings and recomputes pages.
func (c *Controller) SetLayout(l pager.Layout) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pager.SetLayout(l)
	c.emitLocked()
}

// GoToPage switches pages. Out-of-range pages are ignored.
func (c *Controller) GoToPage(n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pager.GoTo(n) {
		return false
	}
	c.emitLocked()
	return true
}

// NextPage advances one page.
func (c *Controller) NextPage() bool {
	return c.step(1)
}

// PrevPage goes back one page.
func (c *Controller) PrevPage() bool {
	return c.step(-1)
}

func (c *Controller) step(dir int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pager.GoTo(c.pager.Current() + dir) {
		return false
	}
	c.emitLocked()
	return true
}

// Wheel feeds a horizontal scroll delta to the swipe detector.
func (c *Controller) Wheel(deltaX float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pager.Wheel(deltaX, c.sched.Now()) {
		return false
	}
	c.emitLocked()
	return true
}

// commitLocked finishes a state change: recompute pages, keep the folder
// session pointing at its folder, queue a write and notify listeners.
func (c *Controller) commitLocked(persist bool) {
	c.pager.Recompute(len(c.items))
	c.syncFolderLocked()
	if persist {
		c.persist.save(c.items.Clone())
	}
	c.emitLocked()
}

func (c *Controller) resetSessionsLocked() {
	c.endDragLocked()
	c.closeFolderLocked()
}

func (c *Controller) emitLocked() {
	if len(c.listeners) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, fn := range c.listeners {
		fn(snap)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	view := c.pager.View()
	return Snapshot{
		Items:      c.items.Clone(),
		Layout:     view.Layout,
		Page:       c.pager.Current(),
		TotalPages: view.TotalPages,
		Pages:      view.Pages,
		Drag:       c.dragInfoLocked(),
		Folder:     c.folderInfoLocked(),
	}
}
