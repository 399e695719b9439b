package service

import (
	"context"
	"sync"
	"time"
)

// ── jobGuard ───────────────────────────────────────────────

// jobGuard lets one run per job name be in flight and lets shutdown wait for
// the runs that are.
type jobGuard struct {
	mu      sync.Mutex
	started map[string]time.Time
	wg      sync.WaitGroup
}

// Begin claims job. The returned release func must be called once the run
// ends; ok is false when the job is already running.
func (g *jobGuard) Begin(job string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started == nil {
		g.started = make(map[string]time.Time)
	}
	if _, busy := g.started[job]; busy {
		return nil, false
	}
	g.started[job] = time.Now()
	g.wg.Add(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.started, job)
			g.mu.Unlock()
			g.wg.Done()
		})
	}, true
}

// Since reports when the running job started.
func (g *jobGuard) Since(job string) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.started[job]
	return t, ok
}

// Wait blocks until no job is running. It returns ctx.Err() if ctx ends first.
func (g *jobGuard) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
