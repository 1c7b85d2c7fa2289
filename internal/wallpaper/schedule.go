package wallpaper

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler runs BackgroundRefresh every Interval. The first run happens one
// interval after scheduling.
type Scheduler struct {
	svc *Service
	log zerolog.Logger

	mu       sync.Mutex
	cron     *cron.Cron
	entry    cron.EntryID
	interval time.Duration
	ctx      context.Context
}

// NewScheduler creates a stopped Scheduler for svc.
func NewScheduler(svc *Service, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		svc:  svc,
		log:  log,
		cron: cron.New(),
	}
}

// Start schedules the current interval and follows later interval changes
// until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.Reschedule(s.svc.Settings().Interval)
	s.svc.Subscribe(func(st Settings) {
		s.Reschedule(st.Interval)
	})
	s.cron.Start()

	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
}

// Reschedule replaces the job. Zero removes it (manual mode).
func (s *Scheduler) Reschedule(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry != 0 && d == s.interval {
		return
	}
	if s.entry != 0 {
		s.cron.Remove(s.entry)
		s.entry = 0
	}
	s.interval = d
	if d <= 0 {
		s.log.Debug().Msg("wallpaper refresh is manual")
		return
	}

	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	s.entry = s.cron.Schedule(cron.Every(d), cron.FuncJob(func() {
		if err := s.svc.BackgroundRefresh(ctx); err != nil {
			s.log.Warn().Err(err).Msg("scheduled wallpaper refresh failed")
		}
	}))
	s.log.Debug().Dur("interval", d).Msg("wallpaper refresh scheduled")
}

// Next returns when the job runs next, or zero in manual mode.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entry).Next
}
