package main

import (
	"context"
	"fmt"

	enhance "github.com/alnah/go-enhance"
)

// PageEnhancer is the interface for the enhancement service.
type PageEnhancer interface {
	Enhance(ctx context.Context, input enhance.Input) (*enhance.Result, error)
}

// Compile-time interface implementation check.
var _ PageEnhancer = (*enhance.Enhancer)(nil)

// Pool abstracts enhancer pool operations for testability.
type Pool interface {
	Acquire() (PageEnhancer, error)
	Release(PageEnhancer)
	Size() int
	Close() error
}

// poolAdapter exposes an enhance.EnhancerPool as a Pool.
type poolAdapter struct {
	pool *enhance.EnhancerPool
}

// Compile-time check that poolAdapter implements Pool.
var _ Pool = (*poolAdapter)(nil)

func (a *poolAdapter) Acquire() (PageEnhancer, error) {
	e, err := a.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Release panics when given an enhancer the pool did not hand out.
func (a *poolAdapter) Release(e PageEnhancer) {
	enh, ok := e.(*enhance.Enhancer)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", e))
	}
	a.pool.Release(enh)
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

func (a *poolAdapter) Close() error {
	return a.pool.Close()
}
