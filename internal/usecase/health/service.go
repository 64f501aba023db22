package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means an optional component failed; stored pages are still readable.
	Degraded Status = "degraded"
	// Unhealthy means a required component failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultTimeout bounds a single component check.
const DefaultTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Component is one dependency checked on every report.
// A failing Required component makes the service Unhealthy, any other Degraded.
type Component struct {
	Name     string
	Check    func(ctx context.Context) error
	Required bool
}

// Database checks the Redis connection.
func Database(p Pinger) Component {
	return Component{Name: "database", Check: p.Ping, Required: true}
}

// VectorIndex checks that the visit index is defined; search cannot run without it.
func VectorIndex(c IndexChecker) Component {
	return Component{Name: "index", Check: c.CheckIndex, Required: true}
}

// Embedding checks the embedding provider. Its failure only degrades the service.
func Embedding(c EmbeddingChecker) Component {
	return Component{Name: "embedding", Check: c.HealthCheck}
}

// Service runs component checks concurrently.
type Service struct {
	components []Component
	timeout    time.Duration
}

// New creates a Service over the given components.
func New(components ...Component) *Service {
	return &Service{components: components, timeout: DefaultTimeout}
}

// WithTimeout overrides the per-component timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs every component and folds the results into one status.
func (s *Service) Check(ctx context.Context) Report {
	results := make([]error, len(s.components))

	var wg sync.WaitGroup
	for i, c := range s.components {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			results[i] = c.Check(cctx)
		}()
	}
	wg.Wait()

	report := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(s.components))}
	for i, c := range s.components {
		if results[i] == nil {
			report.Checks[c.Name] = CheckOK
			continue
		}
		report.Checks[c.Name] = CheckError
		switch {
		case c.Required:
			report.Status = Unhealthy
		case report.Status == Healthy:
			report.Status = Degraded
		}
	}
	return report
}
