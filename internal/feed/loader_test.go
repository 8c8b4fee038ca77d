package feed

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

// fakeBackend implements Backend with overridable behavior per method.
// Unset methods return empty results.
type fakeBackend struct {
	listJobs        func(ctx context.Context) ([]JobPosting, error)
	getEmployer     func(ctx context.Context, id int64) (Employer, error)
	listConnections func(ctx context.Context, userID int64) ([]Connection, error)
	listExperiences func(ctx context.Context, userID int64) ([]Experience, error)
	getUser         func(ctx context.Context, id int64) (User, error)
}

func (f *fakeBackend) ListActiveJobPostings(ctx context.Context) ([]JobPosting, error) {
	if f.listJobs != nil {
		return f.listJobs(ctx)
	}
	return nil, nil
}

func (f *fakeBackend) GetEmployer(ctx context.Context, id int64) (Employer, error) {
	if f.getEmployer != nil {
		return f.getEmployer(ctx, id)
	}
	return Employer{ID: id}, nil
}

func (f *fakeBackend) ListAcceptedConnections(ctx context.Context, userID int64) ([]Connection, error) {
	if f.listConnections != nil {
		return f.listConnections(ctx, userID)
	}
	return nil, nil
}

func (f *fakeBackend) ListExperiences(ctx context.Context, userID int64) ([]Experience, error) {
	if f.listExperiences != nil {
		return f.listExperiences(ctx, userID)
	}
	return nil, nil
}

func (f *fakeBackend) GetUser(ctx context.Context, id int64) (User, error) {
	if f.getUser != nil {
		return f.getUser(ctx, id)
	}
	return User{ID: id}, nil
}

func TestLoadSignedOut(t *testing.T) {
	var connectionCalls int32
	backend := &fakeBackend{
		listJobs: func(ctx context.Context) ([]JobPosting, error) {
			return []JobPosting{
				{ID: 1, EmployerID: 100, Status: JobStatusActive, PostedDate: 2000},
				{ID: 2, EmployerID: 100, Status: JobStatusActive, PostedDate: 1000},
			}, nil
		},
		getEmployer: func(ctx context.Context, id int64) (Employer, error) {
			return Employer{ID: id, Name: "Acme Corp"}, nil
		},
		listConnections: func(ctx context.Context, userID int64) ([]Connection, error) {
			atomic.AddInt32(&connectionCalls, 1)
			return nil, nil
		},
	}

	loader := NewLoader(backend, discardLogger())
	snap, err := loader.Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(snap.Jobs) != 2 {
		t.Errorf("expected 2 jobs, got %d", len(snap.Jobs))
	}
	if len(snap.Experiences) != 0 {
		t.Errorf("signed-out load should carry no experiences, got %d", len(snap.Experiences))
	}
	if atomic.LoadInt32(&connectionCalls) != 0 {
		t.Error("signed-out load must not fetch connections")
	}
	if snap.EmployerName(100) != "Acme Corp" {
		t.Errorf("employer 100 resolved to %q", snap.EmployerName(100))
	}
	if status, _ := loader.Status(); status != StatusReady {
		t.Errorf("status = %v, want ready", status)
	}
}

func TestLoadSignedInMergesConnections(t *testing.T) {
	backend := &fakeBackend{
		listJobs: func(ctx context.Context) ([]JobPosting, error) {
			return []JobPosting{{ID: 1, EmployerID: 100, Status: JobStatusActive, PostedDate: 1000}}, nil
		},
		listConnections: func(ctx context.Context, userID int64) ([]Connection, error) {
			return []Connection{
				{UserID: userID, ConnectedUserID: 7},
				{UserID: 8, ConnectedUserID: userID}, // inverted direction
			}, nil
		},
		listExperiences: func(ctx context.Context, userID int64) ([]Experience, error) {
			return []Experience{{ID: userID * 10, UserID: userID, UpdatedAt: 2000 + userID}}, nil
		},
		getUser: func(ctx context.Context, id int64) (User, error) {
			return User{ID: id, Name: fmt.Sprintf("user-%d", id)}, nil
		},
	}

	loader := NewLoader(backend, discardLogger())
	me := &User{ID: 1}
	snap, err := loader.Load(context.Background(), me)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(snap.Experiences) != 2 {
		t.Fatalf("expected experiences from both partners, got %d", len(snap.Experiences))
	}
	// Partner ids are 7 and 8 regardless of connection direction; newest
	// experience first.
	if snap.Experiences[0].UserID != 8 || snap.Experiences[1].UserID != 7 {
		t.Errorf("unexpected experience order: %+v", snap.Experiences)
	}
	if len(snap.ConnectedUsers) != 2 {
		t.Fatalf("expected 2 resolved users, got %d", len(snap.ConnectedUsers))
	}
	if snap.ConnectedUsers[7].Name != "user-7" {
		t.Errorf("user 7 resolved to %+v", snap.ConnectedUsers[7])
	}
}

func TestLoadPrimaryFailureIsFatal(t *testing.T) {
	backend := &fakeBackend{
		listJobs: func(ctx context.Context) ([]JobPosting, error) {
			return nil, errors.New("backend unavailable")
		},
	}

	loader := NewLoader(backend, discardLogger())
	if _, err := loader.Load(context.Background(), nil); err == nil {
		t.Fatal("expected error when the job list fetch fails")
	}

	status, loadErr := loader.Status()
	if status != StatusError {
		t.Errorf("status = %v, want error", status)
	}
	if loadErr == nil {
		t.Error("error state should retain the failure")
	}
	if loader.Snapshot() != nil {
		t.Error("failed load must not leave a snapshot")
	}
}

func TestLoadConnectionFailureIsFatal(t *testing.T) {
	backend := &fakeBackend{
		listJobs: func(ctx context.Context) ([]JobPosting, error) {
			return []JobPosting{{ID: 1, Status: JobStatusActive}}, nil
		},
		listConnections: func(ctx context.Context, userID int64) ([]Connection, error) {
			return nil, errors.New("connections unavailable")
		},
	}

	loader := NewLoader(backend, discardLogger())
	if _, err := loader.Load(context.Background(), &User{ID: 1}); err == nil {
		t.Fatal("expected error when the connection list fetch fails")
	}
	if status, _ := loader.Status(); status != StatusError {
		t.Errorf("status = %v, want error", status)
	}
}

func TestLoadSecondaryFailuresAreTolerated(t *testing.T) {
	backend := &fakeBackend{
		listJobs: func(ctx context.Context) ([]JobPosting, error) {
			return []JobPosting{
				{ID: 1, EmployerID: 100, Status: JobStatusActive, PostedDate: 1000},
				{ID: 2, EmployerID: 200, Status: JobStatusActive, PostedDate: 2000},
			}, nil
		},
		getEmployer: func(ctx context.Context, id int64) (Employer, error) {
			if id == 200 {
				return Employer{}, errors.New("employer not found")
			}
			return Employer{ID: id, Name: "Acme Corp"}, nil
		},
	}

	loader := NewLoader(backend, discardLogger())
	snap, err := loader.Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("per-entity failure should not fail the load: %v", err)
	}

	if len(snap.Jobs) != 2 {
		t.Errorf("both jobs should survive, got %d", len(snap.Jobs))
	}
	if _, ok := snap.Employers[200]; ok {
		t.Error("failed employer should be unresolved")
	}
	if snap.EmployerName(100) != "Acme Corp" {
		t.Errorf("employer 100 resolved to %q", snap.EmployerName(100))
	}
}

func TestLoadEmptyFeedIsReadyNotError(t *testing.T) {
	loader := NewLoader(&fakeBackend{}, discardLogger())
	snap, err := loader.Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if snap == nil {
		t.Fatal("empty load should still commit a snapshot")
	}
	if len(snap.Jobs) != 0 || len(snap.Experiences) != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
	if status, loadErr := loader.Status(); status != StatusReady || loadErr != nil {
		t.Errorf("status = %v (%v), want ready with no error", status, loadErr)
	}
}

func TestLoadSupersededResultIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	var call int32
	backend := &fakeBackend{
		listJobs: func(ctx context.Context) ([]JobPosting, error) {
			n := atomic.AddInt32(&call, 1)
			started <- struct{}{}
			if n == 1 {
				// First load stalls until the second has committed.
				<-release
				return []JobPosting{{ID: 1, Status: JobStatusActive, PostedDate: 1000}}, nil
			}
			return []JobPosting{{ID: 2, Status: JobStatusActive, PostedDate: 2000}}, nil
		},
	}

	loader := NewLoader(backend, discardLogger())

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		loader.Load(context.Background(), nil)
	}()
	<-started

	if _, err := loader.Load(context.Background(), nil); err != nil {
		t.Fatalf("second load failed: %v", err)
	}
	<-started

	close(release)
	<-firstDone

	// The stale first load finished last but must not replace the newer
	// snapshot.
	snap := loader.Snapshot()
	if snap == nil || len(snap.Jobs) != 1 || snap.Jobs[0].ID != 2 {
		t.Fatalf("superseded load overwrote the current snapshot: %+v", snap)
	}
	if status, _ := loader.Status(); status != StatusReady {
		t.Errorf("status = %v, want ready", status)
	}
}
