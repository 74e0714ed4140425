// Package health serves liveness and readiness probes.
//
// Checks run in the background and flip state only after a run of
// consecutive results, so a single slow database ping does not pull the
// instance out of the load balancer.
package health

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
	"golang.org/x/sync/errgroup"
)

// CheckFunc returns nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

// Kind selects the probe a check contributes to.
type Kind int

const (
	Liveness Kind = iota
	Readiness
)

func (k Kind) String() string {
	if k == Liveness {
		return "liveness"
	}
	return "readiness"
}

// Check describes a registered check.
type Check struct {
	Name    string
	Kind    Kind
	Timeout time.Duration
	Func    CheckFunc
	// FailAfter consecutive failures mark the check unhealthy. Default 3.
	FailAfter int
	// RecoverAfter consecutive successes mark it healthy again. Default 1.
	RecoverAfter int
}

type probe struct {
	Check

	healthy atomic.Bool
	lastErr atomic.Pointer[string]

	// Only touched by the probe goroutine.
	fails, oks int
}

func (p *probe) observe(err error) {
	if err == nil {
		p.fails = 0
		p.oks++
		p.lastErr.Store(nil)
		if p.oks >= p.RecoverAfter {
			p.healthy.Store(true)
		}
		return
	}
	msg := err.Error()
	p.lastErr.Store(&msg)
	p.oks = 0
	p.fails++
	if p.fails >= p.FailAfter {
		p.healthy.Store(false)
	}
}

func (p *probe) once(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	p.observe(p.Func(ctx))
}

func (p *probe) failure() string {
	if msg := p.lastErr.Load(); msg != nil {
		return *msg
	}
	return "unhealthy"
}

// Health aggregates probes.
type Health struct {
	mu     sync.RWMutex
	probes []*probe
	ready  atomic.Bool
}

// New creates Health. It reports not ready until SetReady(true).
func New() *Health {
	return &Health{}
}

// Add registers a check. Checks start healthy.
func (h *Health) Add(c Check) {
	if c.Timeout <= 0 {
		c.Timeout = time.Second
	}
	if c.FailAfter <= 0 {
		c.FailAfter = 3
	}
	if c.RecoverAfter <= 0 {
		c.RecoverAfter = 1
	}
	p := &probe{Check: c}
	p.healthy.Store(true)

	h.mu.Lock()
	h.probes = append(h.probes, p)
	h.mu.Unlock()
}

// SetReady toggles readiness, e.g. false while draining on shutdown.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Run executes every check immediately and then every interval until ctx
// is done.
func (h *Health) Run(ctx context.Context, interval time.Duration) error {
	h.mu.RLock()
	probes := slices.Clone(h.probes)
	h.mu.RUnlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, p := range probes {
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				p.once(ctx)
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		})
	}
	return g.Wait()
}

// failures returns failing checks of kind, sorted by name.
func (h *Health) failures(kind Kind) [][2]string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out [][2]string
	for _, p := range h.probes {
		if p.Kind == kind && !p.healthy.Load() {
			out = append(out, [2]string{p.Name, p.failure()})
		}
	}
	slices.SortFunc(out, func(a, b [2]string) int {
		switch {
		case a[0] < b[0]:
			return -1
		case a[0] > b[0]:
			return 1
		}
		return 0
	})
	return out
}

// Live reports whether every liveness check passes.
func (h *Health) Live() bool {
	return len(h.failures(Liveness)) == 0
}

// Ready reports whether the service is marked ready and every readiness
// check passes.
func (h *Health) Ready() bool {
	return h.ready.Load() && len(h.failures(Readiness)) == 0
}

// LiveHandler serves /livez.
func (h *Health) LiveHandler(w http.ResponseWriter, _ *http.Request) {
	write(w, h.failures(Liveness))
}

// ReadyHandler serves /readyz.
func (h *Health) ReadyHandler(w http.ResponseWriter, _ *http.Request) {
	failures := h.failures(Readiness)
	if !h.ready.Load() {
		failures = append([][2]string{{"startup", "not ready"}}, failures...)
	}
	write(w, failures)
}

func write(w http.ResponseWriter, failures [][2]string) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	status := http.StatusOK
	e.ObjStart()
	e.FieldStart("status")
	if len(failures) == 0 {
		e.Str("ok")
	} else {
		status = http.StatusServiceUnavailable
		e.Str("unhealthy")
		e.FieldStart("checks")
		e.ObjStart()
		for _, f := range failures {
			e.FieldStart(f[0])
			e.Str(f[1])
		}
		e.ObjEnd()
	}
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(e.Bytes())))
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
