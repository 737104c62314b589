package enhance

import (
	"errors"
	"runtime"
	"sync"
	"testing"
)

// Compile-time interface check.
var _ interface {
	Acquire() (*Enhancer, error)
	Release(*Enhancer)
	Size() int
	Close() error
} = (*EnhancerPool)(nil)

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	auto := runtime.GOMAXPROCS(0) / cpuDivisor
	if auto < MinPoolSize {
		auto = MinPoolSize
	}
	if auto > MaxPoolSize {
		auto = MaxPoolSize
	}

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{name: "explicit takes priority", workers: 4, want: 4},
		{name: "explicit above cap is kept", workers: 20, want: 20},
		{name: "zero is auto", workers: 0, want: auto},
		{name: "negative is auto", workers: -3, want: auto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ResolvePoolSize(tt.workers); got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func newTestPool(t *testing.T, n int) (*EnhancerPool, *int) {
	t.Helper()
	var mu sync.Mutex
	created := 0
	p := NewEnhancerPool(n, WithPrinter(&fakePrinter{}))
	p.newEnhancer = func(opts ...Option) (*Enhancer, error) {
		mu.Lock()
		created++
		mu.Unlock()
		return NewEnhancer(opts...)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p, &created
}

func TestEnhancerPool_LazyCreation(t *testing.T) {
	t.Parallel()

	p, created := newTestPool(t, 3)
	if *created != 0 {
		t.Fatalf("created before Acquire = %d", *created)
	}

	e, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	p.Release(e)

	again, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if again != e {
		t.Error("released enhancer was not reused")
	}
	if *created != 1 {
		t.Errorf("created = %d, want 1", *created)
	}
	p.Release(again)
}

func TestEnhancerPool_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	p, created := newTestPool(t, 2)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := p.Acquire()
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			p.Release(e)
		}()
	}
	wg.Wait()

	if *created > p.Size() {
		t.Errorf("created = %d, more than size %d", *created, p.Size())
	}
}

func TestEnhancerPool_CreationFailureFreesSlot(t *testing.T) {
	t.Parallel()

	p := NewEnhancerPool(1, WithScope("main["))
	defer p.Close()

	if _, err := p.Acquire(); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("Acquire() error = %v, want ErrInvalidOption", err)
	}
	// The failed slot is free again, so this fails the same way instead of blocking.
	if _, err := p.Acquire(); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("second Acquire() error = %v, want ErrInvalidOption", err)
	}
}

func TestEnhancerPool_Close(t *testing.T) {
	t.Parallel()

	printer := &fakePrinter{}
	p := NewEnhancerPool(1, WithPrinter(printer))

	e, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !printer.closed {
		t.Error("printer not closed")
	}
	// Release after Close must not block or panic.
	p.Release(e)
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
