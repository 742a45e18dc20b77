package dayview

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// DefaultPollInterval is the silent background refresh cadence.
const DefaultPollInterval = 30 * time.Second

// Scheduler drives the refresh cadence while the user is signed in: an
// immediate visible fetch on start, silent polls on a fixed interval, and a
// midnight rollover re-render so statuses and the now indicator follow the
// date change. Logout stops it; a successful login starts it again.
type Scheduler struct {
	service  *Service
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	cron   *cron.Cron
}

func NewScheduler(service *Service, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Scheduler{service: service, interval: interval}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.cron = cron.New()
	if _, err := s.cron.AddFunc("0 0 * * *", s.service.Rerender); err != nil {
		log.Errorf("failed to schedule midnight rollover: %v", err)
	}
	s.cron.Start()

	go s.run(ctx)
	log.Infof("refresh scheduler started, polling every %s", s.interval)
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	s.cron.Stop()
	s.cron = nil
	log.Info("refresh scheduler stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Scheduler) run(ctx context.Context) {
	// entering the authenticated view: fetch visibly right away
	if err := s.service.Refresh(ctx, true); err != nil {
		log.Warnf("initial fetch failed: %v", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// silent tick, failures swallowed inside Refresh
			_ = s.service.Refresh(ctx, false)
		}
	}
}
