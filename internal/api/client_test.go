package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, log.New(io.Discard, "", 0))
}

func respond(w http.ResponseWriter, status int, success bool, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": success,
		"message": message,
		"data":    data,
	})
}

func TestListActiveJobPostings(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/job-postings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		respond(w, http.StatusOK, true, "", []map[string]any{
			{"id": 1, "employer_id": 100, "title": "Senior Engineer", "status": "ACTIVE", "posted_date": 1710504000000, "salary_min": 50000},
		})
	}))

	jobs, err := client.ListActiveJobPostings(context.Background())
	if err != nil {
		t.Fatalf("ListActiveJobPostings failed: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	job := jobs[0]
	if job.ID != 1 || job.EmployerID != 100 || job.Title != "Senior Engineer" {
		t.Errorf("unexpected job: %+v", job)
	}
	if job.PostedDate != 1710504000000 || job.SalaryMin != 50000 {
		t.Errorf("unexpected job numerics: %+v", job)
	}
}

func TestGetEmployerNotFound(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusNotFound, false, "Employer not found", nil)
	}))

	_, err := client.GetEmployer(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnvelopeFailureBecomesError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, false, "Something went wrong", nil)
	}))

	_, err := client.ListActiveJobPostings(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Message != "Something went wrong" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestNonJSONErrorResponse(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))

	_, err := client.ListActiveJobPostings(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}

func TestLoginSuccess(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Errorf("decoding credentials: %v", err)
		}
		if creds.Email != "dana@example.com" || creds.Password != "hunter2" {
			t.Errorf("unexpected credentials: %+v", creds)
		}
		respond(w, http.StatusOK, true, "Login successful", map[string]any{
			"id": 7, "name": "Dana", "email": creds.Email, "location": "Lisbon",
		})
	}))

	user, err := client.Login(context.Background(), "dana@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != 7 || user.Name != "Dana" || user.Location != "Lisbon" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestLoginRejected(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusUnauthorized, false, "Invalid email or password", nil)
	}))

	_, err := client.Login(context.Background(), "dana@example.com", "wrong")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Message != "Invalid email or password" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}

func TestListAcceptedConnectionsPath(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/user-connections/user/9/accepted" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		respond(w, http.StatusOK, true, "", []map[string]any{
			{"user_id": 9, "connected_user_id": 12},
		})
	}))

	conns, err := client.ListAcceptedConnections(context.Background(), 9)
	if err != nil {
		t.Fatalf("ListAcceptedConnections failed: %v", err)
	}
	if len(conns) != 1 || conns[0].Partner(9) != 12 {
		t.Errorf("unexpected connections: %+v", conns)
	}
}

func TestListExperiencesNumericDates(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/user-experiences/user/7" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		respond(w, http.StatusOK, true, "", []map[string]any{
			{"id": 10, "user_id": 7, "title": "Backend Developer", "start_date": 1690000000000, "is_current": true, "updated_at": 1720000000000},
			{"id": 11, "user_id": 7, "title": "Data Analyst", "start_date": "2022-01", "end_date": "2023-05", "updated_at": 1710000000000},
		})
	}))

	experiences, err := client.ListExperiences(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListExperiences failed: %v", err)
	}
	if len(experiences) != 2 {
		t.Fatalf("expected 2 experiences, got %d", len(experiences))
	}
	if experiences[0].StartDate != "1690000000000" {
		t.Errorf("numeric start_date = %q", experiences[0].StartDate)
	}
	if experiences[1].StartDate != "2022-01" || experiences[1].EndDate != "2023-05" {
		t.Errorf("string dates = %q / %q", experiences[1].StartDate, experiences[1].EndDate)
	}
}

func TestPingSendsHead(t *testing.T) {
	var method string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if method != http.MethodHead {
		t.Errorf("health check used %s, want HEAD", method)
	}
}

func TestNullDataLeavesZeroValue(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, true, "", nil)
	}))

	jobs, err := client.ListActiveJobPostings(context.Background())
	if err != nil {
		t.Fatalf("ListActiveJobPostings failed: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("expected no jobs, got %v", jobs)
	}
}
