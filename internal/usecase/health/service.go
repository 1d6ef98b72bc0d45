package health

import (
	"context"
	"sort"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates that some configured indexes are unavailable.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckMissing indicates a configured index that does not exist.
	CheckMissing CheckResult = "missing"
)

const databaseCheck = "database"

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      Pinger
	indexes IndexProber
	names   []string
	timeout time.Duration
}

// New creates a Service. indexes can be nil; names are the indexes expected to exist.
func New(db Pinger, indexes IndexProber, names []string) *Service {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return &Service{db: db, indexes: indexes, names: sorted}
}

// WithProbeTimeout bounds every backend call made by Check. Zero disables the bound.
func (s *Service) WithProbeTimeout(d time.Duration) *Service {
	s.timeout = d
	return s
}

func (s *Service) probe(ctx context.Context, fn func(context.Context) error) error {
	if s.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}

// Check pings the database and, when it is reachable, probes every configured index.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.names)+1)

	if err := s.probe(ctx, s.db.Ping); err != nil {
		checks[databaseCheck] = CheckError
		return Report{Status: Unhealthy, Checks: checks}
	}
	checks[databaseCheck] = CheckOK

	status := Healthy
	if s.indexes == nil {
		return Report{Status: status, Checks: checks}
	}
	for _, name := range s.names {
		key := "index:" + name
		var ok bool
		err := s.probe(ctx, func(ctx context.Context) error {
			var err error
			ok, err = s.indexes.IndexExists(ctx, name)
			return err
		})
		switch {
		case err != nil:
			checks[key] = CheckError
			status = Degraded
		case !ok:
			checks[key] = CheckMissing
			status = Degraded
		default:
			checks[key] = CheckOK
		}
	}
	return Report{Status: status, Checks: checks}
}
