package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func fixed(name string, status Status) Checker {
	return NewChecker(name, func(context.Context) CheckResult {
		return CheckResult{Status: status}
	})
}

func TestNewChecker(t *testing.T) {
	checker := NewChecker("test-checker", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Message: "test passed"}
	})

	if checker.Name() != "test-checker" {
		t.Errorf("Name() = %v, want test-checker", checker.Name())
	}
	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
	if result.Message != "test passed" {
		t.Errorf("Message = %v, want 'test passed'", result.Message)
	}
}

func TestRegistry_OverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy}, StatusUnhealthy},
		{"unknown", []Status{StatusHealthy, StatusUnknown}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry("nucmd", "1.0.0")
			for i, s := range tt.statuses {
				r.Register(fixed(string(rune('a'+i)), s))
			}
			report := r.Check(context.Background())
			if report.Status != tt.want {
				t.Errorf("Status = %v, want %v", report.Status, tt.want)
			}
			if len(report.Checks) != len(tt.statuses) {
				t.Errorf("Checks = %d, want %d", len(report.Checks), len(tt.statuses))
			}
		})
	}
}

func TestRegistry_ChecksSortedAndNamed(t *testing.T) {
	r := NewRegistry("nucmd", "1.0.0")
	r.Register(fixed("zeta", StatusHealthy))
	r.Register(fixed("alpha", StatusHealthy))
	r.RegisterFunc("mid", func(context.Context) CheckResult { return CheckResult{Status: StatusHealthy} })

	report := r.Check(context.Background())
	var names []string
	for _, c := range report.Checks {
		names = append(names, c.Name)
	}
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Checks = %v, want %v", names, want)
			break
		}
	}
	if report.Service != "nucmd" || report.Version != "1.0.0" {
		t.Errorf("report = %+v", report)
	}
}

func TestRegistry_CheckWithTimeout(t *testing.T) {
	r := NewRegistry("nucmd", "1.0.0")
	r.RegisterFunc("slow", func(ctx context.Context) CheckResult {
		time.Sleep(time.Second)
		return CheckResult{Status: StatusHealthy}
	})

	start := time.Now()
	report := r.CheckWithTimeout(20 * time.Millisecond)
	if time.Since(start) > 500*time.Millisecond {
		t.Error("CheckWithTimeout did not return at the deadline")
	}
	if report.Checks[0].Status != StatusUnknown {
		t.Errorf("slow check = %v, want unknown", report.Checks[0].Status)
	}
	if report.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", report.Status)
	}
}

func TestRegistry_ConcurrentChecks(t *testing.T) {
	r := NewRegistry("nucmd", "1.0.0")
	var calls int32
	for _, name := range []string{"a", "b", "c", "d"} {
		r.RegisterFunc(name, func(context.Context) CheckResult {
			atomic.AddInt32(&calls, 1)
			time.Sleep(50 * time.Millisecond)
			return CheckResult{Status: StatusHealthy}
		})
	}

	start := time.Now()
	r.Check(context.Background())
	if atomic.LoadInt32(&calls) != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
	if time.Since(start) > 150*time.Millisecond {
		t.Error("checks did not run concurrently")
	}
}

func TestCommands(t *testing.T) {
	tests := []struct {
		names []string
		want  Status
	}{
		{nil, StatusUnhealthy},
		{[]string{"exit", "help", "list"}, StatusDegraded},
		{[]string{"echo", "exit", "help", "list"}, StatusHealthy},
	}
	for _, tt := range tests {
		c := Commands("commands", func() []string { return tt.names }, 3)
		if got := c.Check(context.Background()).Status; got != tt.want {
			t.Errorf("Commands(%v) = %v, want %v", tt.names, got, tt.want)
		}
	}
}

func TestProbe(t *testing.T) {
	ok := Probe("ok", func(context.Context) error { return nil })
	if got := ok.Check(context.Background()); got.Status != StatusHealthy {
		t.Errorf("ok probe = %v, want healthy", got.Status)
	}
	bad := Probe("bad", func(context.Context) error { return errors.New("database is locked") })
	got := bad.Check(context.Background())
	if got.Status != StatusUnhealthy || got.Message != "database is locked" {
		t.Errorf("bad probe = %+v", got)
	}
}

func TestHandler(t *testing.T) {
	tests := []struct {
		status Status
		code   int
	}{
		{StatusHealthy, http.StatusOK},
		{StatusDegraded, http.StatusOK},
		{StatusUnhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			r := NewRegistry("nucmd", "1.0.0")
			r.Register(fixed("only", tt.status))

			rec := httptest.NewRecorder()
			r.Handler(time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if rec.Code != tt.code {
				t.Errorf("code = %d, want %d", rec.Code, tt.code)
			}
			var report Report
			if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if report.Status != tt.status {
				t.Errorf("Status = %v, want %v", report.Status, tt.status)
			}
		})
	}
}

func TestReport_String(t *testing.T) {
	report := &Report{Service: "nucmd", Status: StatusHealthy, Uptime: "5m0s"}
	want := "Service: nucmd, Status: healthy, Uptime: 5m0s, Checks: 0"
	if got := report.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
