package grid

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nikbrunner/newtab/internal/model"
	"github.com/nikbrunner/newtab/internal/storage"
)

const persistTimeout = 10 * time.Second

// persister writes collections to the store from a single background
// goroutine. Saves queued while a write is in flight coalesce into the latest.
type persister struct {
	store storage.Store
	log   zerolog.Logger

	mu         sync.Mutex
	idle       *sync.Cond
	pending    model.Collection
	hasPending bool
	running    bool
}

func newPersister(store storage.Store, log zerolog.Logger) *persister {
	p := &persister{store: store, log: log}
	p.idle = sync.NewCond(&p.mu)
	return p
}

// save queues items for writing. It never blocks on the store.
func (p *persister) save(items model.Collection) {
	if p.store == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending = items
	p.hasPending = true
	if !p.running {
		p.running = true
		go p.drain()
	}
}

func (p *persister) drain() {
	for {
		p.mu.Lock()
		if !p.hasPending {
			p.running = false
			p.idle.Broadcast()
			p.mu.Unlock()
			return
		}
		items := p.pending
		p.pending = nil
		p.hasPending = false
		p.mu.Unlock()

		p.write(items)
	}
}

func (p *persister) write(items model.Collection) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	// The in-memory collection stays authoritative; a failed write is retried
	// implicitly by the next mutation.
	if err := storage.SaveCollection(ctx, p.store, items); err != nil {
		p.log.Error().Err(err).Int("items", len(items)).Msg("failed to persist shortcuts")
		return
	}
	p.log.Debug().Int("items", len(items)).Msg("shortcuts persisted")
}

// flush blocks until every queued save has been written or failed.
func (p *persister) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.running || p.hasPending {
		p.idle.Wait()
	}
}
