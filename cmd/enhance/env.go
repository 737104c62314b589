package main

import (
	"io"
	"os"
	"time"

	enhance "github.com/alnah/go-enhance"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, environment lookup, and the enhancer pool factory.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Environ func() []string
	NewPool func(size int, opts ...enhance.Option) Pool
}

// DefaultEnv returns the production environment backed by a real
// EnhancerPool. Variables missing from the process are read from .env.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  withDotEnv(os.Getenv, dotEnvFiles...),
		Environ: os.Environ,
		NewPool: func(size int, opts ...enhance.Option) Pool {
			return &poolAdapter{pool: enhance.NewEnhancerPool(size, opts...)}
		},
	}
}
