package favicon

import (
	"context"
	"sync"

	"github.com/nikbrunner/newtab/internal/model"
)

// ProgressFunc is called after each icon is loaded.
// completed is the number of icons handled so far, total is the total count.
type ProgressFunc func(completed, total int)

// Sites lists the distinct icon URLs for every link in items, folder
// children included.
func Sites(items model.Collection) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(site string) {
		icon, ok := ResolveIconURL(site)
		if !ok || seen[icon] {
			return
		}
		seen[icon] = true
		out = append(out, icon)
	}
	for _, item := range items {
		if item.IsFolder() {
			for _, child := range item.Children {
				add(child.URL)
			}
			continue
		}
		add(item.URL)
	}
	return out
}

// Prefetch loads the icons of every link in items with a fixed number of
// workers and returns how many loaded.
func (l *Loader) Prefetch(ctx context.Context, items model.Collection, workers int, onProgress ProgressFunc) int {
	icons := Sites(items)
	if len(icons) == 0 {
		return 0
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string, len(icons))
	var wg sync.WaitGroup

	var mu sync.Mutex
	completed, loaded := 0, 0

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for icon := range jobs {
				if ctx.Err() != nil {
					continue
				}
				r := l.Load(ctx, icon)

				mu.Lock()
				completed++
				if r.Status == StatusLoaded {
					loaded++
				}
				if onProgress != nil {
					onProgress(completed, len(icons))
				}
				mu.Unlock()
			}
		}()
	}

	for _, icon := range icons {
		jobs <- icon
	}
	close(jobs)

	wg.Wait()
	l.log.Debug().Int("icons", len(icons)).Int("loaded", loaded).Msg("favicons prefetched")
	return loaded
}
