// Package pager splits the shortcut grid into fixed-size pages.
package pager

import "time"

// Defaults used when a layout value is missing or invalid.
const (
	DefaultItemsPerRow = 6
	DefaultRowsPerPage = 2
)

// Wheel swipe tuning.
const (
	SwipeThreshold     = 150.0
	SwipeIdleReset     = 300 * time.Millisecond
	PageChangeCooldown = 400 * time.Millisecond
)

// Layout is the grid shape taken from settings.
type Layout struct {
	ItemsPerRow int
	RowsPerPage int
}

// Normalized returns the layout with invalid values replaced by defaults.
func (l Layout) Normalized() Layout {
	if l.ItemsPerRow <= 0 {
		l.ItemsPerRow = DefaultItemsPerRow
	}
	if l.RowsPerPage <= 0 {
		l.RowsPerPage = DefaultRowsPerPage
	}
	return l
}

// PerPage is the number of slots on one page.
func (l Layout) PerPage() int {
	n := l.Normalized()
	return n.ItemsPerRow * n.RowsPerPage
}

// Slot is one cell of a page: an item index, or the add button.
type Slot struct {
	Index int
	Add   bool
}

// View is the derived page structure for a collection size.
type View struct {
	Layout     Layout
	TotalPages int
	Pages      [][]Slot
}

// TotalPages returns ceil((count+1)/perPage), never less than 1.
// The +1 reserves the add-button slot after the last item.
func TotalPages(count int, l Layout) int {
	if count < 0 {
		count = 0
	}
	per := l.PerPage()
	total := (count + 1 + per - 1) / per
	if total < 1 {
		return 1
	}
	return total
}

// Compute lays out count items plus the trailing add button.
func Compute(count int, l Layout) View {
	if count < 0 {
		count = 0
	}
	l = l.Normalized()
	per := l.PerPage()
	total := TotalPages(count, l)

	pages := make([][]Slot, total)
	for p := 0; p < total; p++ {
		start := p * per
		end := start + per
		if end > count+1 {
			end = count + 1
		}
		page := make([]Slot, 0, end-start)
		for i := start; i < end; i++ {
			if i < count {
				page = append(page, Slot{Index: i})
			} else {
				page = append(page, Slot{Index: -1, Add: true})
			}
		}
		pages[p] = page
	}

	return View{Layout: l, TotalPages: total, Pages: pages}
}

// PageOf returns the page holding the item at index.
func PageOf(index int, l Layout) int {
	if index < 0 {
		return 0
	}
	return index / l.PerPage()
}

// Pager tracks the current page for a grid.
type Pager struct {
	layout   Layout
	count    int
	total    int
	current  int
	onChange func(page int)

	accumDeltaX float64
	lastWheelAt time.Time
	lastPageAt  time.Time
}

// New creates a Pager for the given layout.
func New(l Layout) *Pager {
	l = l.Normalized()
	return &Pager{layout: l, total: 1}
}

// OnChange registers the page-changed listener. Display only.
func (p *Pager) OnChange(fn func(page int)) {
	p.onChange = fn
}

// Layout returns the active layout.
func (p *Pager) Layout() Layout {
	return p.layout
}

// Current returns the current page.
func (p *Pager) Current() int {
	return p.current
}

// Total returns the page count from the last recompute.
func (p *Pager) Total() int {
	return p.total
}

// View computes the page structure for the last known count.
func (p *Pager) View() View {
	return Compute(p.count, p.layout)
}

// Recompute updates the page count for count items and clamps the current page.
func (p *Pager) Recompute(count int) {
	p.count = count
	p.total = TotalPages(count, p.layout)
	if p.current >= p.total {
		p.setCurrent(p.total - 1)
	}
}

// SetLayout switches layout and recomputes.
func (p *Pager) SetLayout(l Layout) {
	p.layout = l.Normalized()
	p.Recompute(p.count)
}

// GoTo moves to page n. Out-of-range requests are ignored.
func (p *Pager) GoTo(n int) bool {
	if n < 0 || n >= p.total {
		return false
	}
	p.setCurrent(n)
	return true
}

// Next advances one page if possible.
func (p *Pager) Next() bool {
	return p.GoTo(p.current + 1)
}

// Prev goes back one page if possible.
func (p *Pager) Prev() bool {
	return p.GoTo(p.current - 1)
}

// Wheel feeds a horizontal scroll delta. Deltas accumulate until they pass
// SwipeThreshold, then flip one page and start a cooldown.
func (p *Pager) Wheel(deltaX float64, now time.Time) bool {
	if p.total <= 1 || deltaX == 0 {
		return false
	}
	if !p.lastPageAt.IsZero() && now.Sub(p.lastPageAt) < PageChangeCooldown {
		return false
	}
	if !p.lastWheelAt.IsZero() && now.Sub(p.lastWheelAt) >= SwipeIdleReset {
		p.accumDeltaX = 0
	}
	p.lastWheelAt = now
	p.accumDeltaX += deltaX

	var moved bool
	switch {
	case p.accumDeltaX > SwipeThreshold:
		moved = p.Next()
	case p.accumDeltaX < -SwipeThreshold:
		moved = p.Prev()
	default:
		return false
	}

	p.accumDeltaX = 0
	p.lastPageAt = now
	return moved
}

func (p *Pager) setCurrent(n int) {
	if n < 0 {
		n = 0
	}
	changed := n != p.current
	p.current = n
	if changed && p.onChange != nil {
		p.onChange(n)
	}
}
