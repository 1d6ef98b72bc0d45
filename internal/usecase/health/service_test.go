package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Mocks ---

type mockPinger struct {
	err   error
	block bool
}

func (m *mockPinger) Ping(ctx context.Context) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return m.err
}

type mockIndexProber struct {
	exists map[string]bool
	err    error
	calls  int
}

func (m *mockIndexProber) IndexExists(_ context.Context, name string) (bool, error) {
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	return m.exists[name], nil
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	idx := &mockIndexProber{exists: map[string]bool{"books": true, "films": true}}
	svc := New(&mockPinger{}, idx, []string{"films", "books"})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["database"] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks["database"])
	}
	if r.Checks["index:books"] != CheckOK || r.Checks["index:films"] != CheckOK {
		t.Errorf("unexpected index checks: %v", r.Checks)
	}
}

func TestCheck_DBError(t *testing.T) {
	idx := &mockIndexProber{exists: map[string]bool{"books": true}}
	svc := New(&mockPinger{err: errors.New("conn refused")}, idx, []string{"books"})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
	if idx.calls != 0 {
		t.Errorf("indexes probed %d times after a failed ping", idx.calls)
	}
}

func TestCheck_MissingIndex(t *testing.T) {
	idx := &mockIndexProber{exists: map[string]bool{"books": true}}
	svc := New(&mockPinger{}, idx, []string{"books", "films"})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["index:films"] != CheckMissing {
		t.Errorf("expected films %q, got %q", CheckMissing, r.Checks["index:films"])
	}
}

func TestCheck_IndexError(t *testing.T) {
	idx := &mockIndexProber{err: errors.New("timeout")}
	svc := New(&mockPinger{}, idx, []string{"books"})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["index:books"] != CheckError {
		t.Errorf("expected books %q, got %q", CheckError, r.Checks["index:books"])
	}
}

func TestCheck_NoIndexProber(t *testing.T) {
	svc := New(&mockPinger{}, nil, []string{"books"})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if len(r.Checks) != 1 {
		t.Errorf("expected only the database check, got %v", r.Checks)
	}
}

func TestCheck_ProbeTimeout(t *testing.T) {
	svc := New(&mockPinger{block: true}, nil, nil).WithProbeTimeout(10 * time.Millisecond)

	done := make(chan Report, 1)
	go func() { done <- svc.Check(context.Background()) }()

	select {
	case r := <-done:
		if r.Status != Unhealthy {
			t.Errorf("expected %q, got %q", Unhealthy, r.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("check did not honor the probe timeout")
	}
}
