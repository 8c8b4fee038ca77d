package feed

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

// Backend is the remote boundary the engine consumes. Transport details live
// in internal/api; the loader only sees these contracts. Every method
// returns a hard error for transport or API-level failure; "not found" is an
// error too and is handled by the resolver's partial-failure policy.
type Backend interface {
	ListActiveJobPostings(ctx context.Context) ([]JobPosting, error)
	GetEmployer(ctx context.Context, id int64) (Employer, error)
	ListAcceptedConnections(ctx context.Context, userID int64) ([]Connection, error)
	ListExperiences(ctx context.Context, userID int64) ([]Experience, error)
	GetUser(ctx context.Context, id int64) (User, error)
}

// Loader drives the end-to-end load sequence: fetch jobs and connections in
// parallel, resolve employers and connected users' experiences and profiles,
// and commit one immutable Snapshot.
//
// Loads are tagged with a monotonically increasing generation. A load that
// finishes after a newer one started is discarded at commit time, so rapid
// login/logout cannot publish stale results. In-flight fetches of a
// superseded load are not cancelled, only ignored.
type Loader struct {
	backend Backend
	logger  *log.Logger

	mu         sync.Mutex
	generation uint64
	status     Status
	loadErr    error
	snapshot   *Snapshot
}

func NewLoader(backend Backend, logger *log.Logger) *Loader {
	return &Loader{
		backend: backend,
		logger:  logger,
		status:  StatusIdle,
	}
}

// Status returns the current state of the orchestrator and, in the error
// state, the failure that caused it.
func (l *Loader) Status() (Status, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status, l.loadErr
}

// Snapshot returns the most recently committed snapshot, or nil before the
// first successful load.
func (l *Loader) Snapshot() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot
}

// Load runs one full fetch/resolve cycle for the given user (nil when signed
// out) and returns the resulting snapshot. Failure of a primary fetch (the
// job list, or the connection list when a user is present) is fatal to the
// load; failure of any per-entity fetch only leaves that entity unresolved.
func (l *Loader) Load(ctx context.Context, user *User) (*Snapshot, error) {
	gen := l.begin()

	var (
		wg      sync.WaitGroup
		jobs    []JobPosting
		jobsErr error

		experiences []Experience
		users       map[int64]User
		connErr     error
	)

	employers := map[int64]Employer{}
	users = map[int64]User{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		jobs, jobsErr = l.backend.ListActiveJobPostings(ctx)
		if jobsErr != nil {
			return
		}
		jobs = activeOnly(jobs)
		ids := make([]int64, 0, len(jobs))
		for _, job := range jobs {
			ids = append(ids, job.EmployerID)
		}
		employers = Resolve(ctx, l.logger, ids, l.backend.GetEmployer)
	}()

	if user != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			experiences, users, connErr = l.loadConnections(ctx, user.ID)
		}()
	}

	wg.Wait()

	if jobsErr != nil {
		err := fmt.Errorf("fetching job postings: %w", jobsErr)
		l.fail(gen, err)
		return nil, err
	}
	if connErr != nil {
		err := fmt.Errorf("fetching connections: %w", connErr)
		l.fail(gen, err)
		return nil, err
	}

	snap := &Snapshot{
		Jobs:           jobs,
		Experiences:    experiences,
		Employers:      employers,
		ConnectedUsers: users,
		LoadedAt:       time.Now(),
	}
	l.commit(gen, snap)
	return snap, nil
}

// loadConnections fetches the accepted connection list (primary), then
// resolves every partner's experiences and profile concurrently (secondary).
func (l *Loader) loadConnections(ctx context.Context, userID int64) ([]Experience, map[int64]User, error) {
	connections, err := l.backend.ListAcceptedConnections(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	partnerIDs := make([]int64, 0, len(connections))
	for _, conn := range connections {
		partnerIDs = append(partnerIDs, conn.Partner(userID))
	}

	var (
		wg      sync.WaitGroup
		users   map[int64]User
		perUser map[int64][]Experience
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		users = Resolve(ctx, l.logger, partnerIDs, l.backend.GetUser)
	}()
	go func() {
		defer wg.Done()
		perUser = Resolve(ctx, l.logger, partnerIDs, l.backend.ListExperiences)
	}()
	wg.Wait()

	var experiences []Experience
	for _, exps := range perUser {
		experiences = append(experiences, exps...)
	}
	sort.Slice(experiences, func(i, j int) bool {
		if experiences[i].UpdatedAt != experiences[j].UpdatedAt {
			return experiences[i].UpdatedAt > experiences[j].UpdatedAt
		}
		return experiences[i].ID < experiences[j].ID
	})

	return experiences, users, nil
}

func (l *Loader) begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	l.status = StatusLoading
	l.loadErr = nil
	return l.generation
}

func (l *Loader) fail(gen uint64, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.generation {
		l.logger.Printf("Discarding superseded load (generation %d, current %d)", gen, l.generation)
		return
	}
	l.status = StatusError
	l.loadErr = err
	l.snapshot = nil
}

func (l *Loader) commit(gen uint64, snap *Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.generation {
		l.logger.Printf("Discarding superseded load (generation %d, current %d)", gen, l.generation)
		return
	}
	l.status = StatusReady
	l.loadErr = nil
	l.snapshot = snap
}

// activeOnly keeps postings the backend marked ACTIVE. The list endpoint
// already serves active postings, but the caller filters again per the
// boundary contract.
func activeOnly(jobs []JobPosting) []JobPosting {
	out := jobs[:0]
	for _, job := range jobs {
		if job.Status == JobStatusActive {
			out = append(out, job)
		}
	}
	return out
}
