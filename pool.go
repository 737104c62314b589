package enhance

import (
	"runtime"
	"sync"

	"go.uber.org/multierr"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// EnhancerPool hands out Enhancers for parallel batch runs. Each Enhancer
// owns its printer, so PDF output is printed by separate browsers.
// Enhancers are created lazily on first acquire.
type EnhancerPool struct {
	size int
	opts []Option
	// newEnhancer is replaced in tests.
	newEnhancer func(...Option) (*Enhancer, error)

	mu        sync.Mutex
	enhancers []*Enhancer
	sem       chan *Enhancer
	created   int
	closed    bool
}

// NewEnhancerPool creates a pool with capacity for n Enhancers built
// with opts.
func NewEnhancerPool(n int, opts ...Option) *EnhancerPool {
	if n < 1 {
		n = 1
	}
	return &EnhancerPool{
		size:        n,
		opts:        opts,
		newEnhancer: NewEnhancer,
		enhancers:   make([]*Enhancer, 0, n),
		sem:         make(chan *Enhancer, n),
	}
}

// Acquire returns an idle Enhancer, creating one while under capacity.
// Blocks while all Enhancers are in use.
func (p *EnhancerPool) Acquire() (*Enhancer, error) {
	select {
	case e := <-p.sem:
		return e, nil
	default:
	}

	p.mu.Lock()
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		e, err := p.newEnhancer(p.opts...)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		p.enhancers = append(p.enhancers, e)
		p.mu.Unlock()
		return e, nil
	}
	p.mu.Unlock()

	return <-p.sem, nil
}

// Release returns an Enhancer to the pool.
// The lock is released before sending to avoid deadlock when channel is full.
func (p *EnhancerPool) Release(e *Enhancer) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.sem <- e
}

// Close releases every printer. Errors are combined.
func (p *EnhancerPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	enhancers := p.enhancers
	p.mu.Unlock()

	var errs error
	for _, e := range enhancers {
		errs = multierr.Append(errs, e.Close())
	}
	return errs
}

// Size returns the pool capacity.
func (p *EnhancerPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
