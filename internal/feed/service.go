package feed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Maintenance is a named housekeeping job run on the refresh schedule, such
// as purging expired sessions.
type Maintenance struct {
	Name string
	Run  func(context.Context) error
}

// Service keeps the signed-out (jobs-only) snapshot warm on a cron schedule
// so anonymous visitors never pay for a full backend round-trip, and runs
// registered maintenance jobs alongside. Signed-in page loads always go
// through Loader.Load directly; per-user feeds are never cached here.
type Service struct {
	loader      *Loader
	logger      *log.Logger
	cron        *cron.Cron
	spec        string
	maintenance []Maintenance
}

// NewService creates a Service refreshing every interval.
func NewService(loader *Loader, logger *log.Logger, interval time.Duration) *Service {
	if interval < time.Minute {
		interval = time.Minute
	}
	return &Service{
		loader: loader,
		logger: logger,
		cron:   cron.New(),
		spec:   fmt.Sprintf("@every %s", interval),
	}
}

// AddMaintenance registers a housekeeping job. Must be called before Start.
func (s *Service) AddMaintenance(name string, run func(context.Context) error) {
	s.maintenance = append(s.maintenance, Maintenance{Name: name, Run: run})
}

// Start registers the refresh job and starts the scheduler. One refresh runs
// immediately so the warm snapshot exists before the first tick.
func (s *Service) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runCycle(context.Background())
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	s.logger.Printf("Feed service started, refresh spec %s", s.spec)

	go s.runCycle(context.Background())
	return nil
}

// Stop shuts the scheduler down and waits for a running cycle to finish.
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Printf("Feed service stopped")
}

// Refresh reloads the anonymous snapshot once.
func (s *Service) Refresh(ctx context.Context) error {
	_, err := s.loader.Load(ctx, nil)
	return err
}

// Snapshot returns the warm anonymous snapshot, or nil before the first
// successful refresh.
func (s *Service) Snapshot() *Snapshot {
	return s.loader.Snapshot()
}

// Status reports the anonymous loader's state.
func (s *Service) Status() (Status, error) {
	return s.loader.Status()
}

func (s *Service) runCycle(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if err := s.Refresh(ctx); err != nil {
		s.logger.Printf("Anonymous feed refresh failed: %v", err)
	}
	for _, m := range s.maintenance {
		if err := m.Run(ctx); err != nil {
			s.logger.Printf("Maintenance %s failed: %v", m.Name, err)
		}
	}
}
