// Package gateway simulates the payment gateway and supplier booking APIs that the
// checkout workflow talks to. Delays, decline rules and success rates follow the
// prototype behaviour and are configurable.
package gateway

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the production SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Random is the randomness the simulators draw from.
type Random interface {
	Float64() float64
	Intn(n int) int
}

// lockedRand makes a *rand.Rand safe for the concurrent fan-out.
type lockedRand struct {
	mu  sync.Mutex
	rnd Random
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}

// Option customises a simulator.
type Option func(*options)

type options struct {
	rnd   Random
	sleep SleepFunc
	now   func() time.Time
}

// WithRandom replaces the random source.
func WithRandom(r Random) Option {
	return func(o *options) { o.rnd = r }
}

// WithSleep replaces the delay function.
func WithSleep(s SleepFunc) Option {
	return func(o *options) { o.sleep = s }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: Sleep,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.rnd = &lockedRand{rnd: o.rnd}
	return o
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomID(rnd Random, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = idAlphabet[rnd.Intn(len(idAlphabet))]
	}
	return string(b)
}
