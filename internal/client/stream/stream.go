// Package stream reveals a complete AI response token by token with a small
// randomized delay, as if it were streamed.
package stream

import (
	"context"
	"iter"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	DefaultMinDelay = 18 * time.Millisecond
	DefaultJitter   = 20 * time.Millisecond
)

// SleepFunc waits for d or until ctx is done, returning ctx.Err() in the latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Revealer splits text on whitespace and emits "token " chunks. The delay
// before every chunk is MinDelay plus a uniform random part in [0, Jitter).
type Revealer struct {
	MinDelay time.Duration
	Jitter   time.Duration

	// Sleep replaces the real timer; used by tests.
	Sleep SleepFunc
	// Rand returns a value in [0, n); defaults to math/rand/v2.
	Rand func(n int64) int64
}

// New returns a Revealer with the given delays; non-positive values fall back
// to the defaults.
func New(minDelay, jitter time.Duration) *Revealer {
	if minDelay <= 0 {
		minDelay = DefaultMinDelay
	}
	if jitter < 0 {
		jitter = DefaultJitter
	}
	return &Revealer{MinDelay: minDelay, Jitter: jitter}
}

func (r *Revealer) delay() time.Duration {
	d := r.MinDelay
	if r.Jitter > 0 {
		rnd := rand.Int64N
		if r.Rand != nil {
			rnd = r.Rand
		}
		d += time.Duration(rnd(int64(r.Jitter)))
	}
	return d
}

func (r *Revealer) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Tokens yields the chunks of text lazily. Iteration ends early when ctx is
// cancelled; a chunk is never cut.
func (r *Revealer) Tokens(ctx context.Context, text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, tok := range strings.Fields(text) {
			if r.sleep(ctx, r.delay()) != nil {
				return
			}
			if !yield(tok + " ") {
				return
			}
		}
	}
}

// Reveal feeds every chunk of text into appendChunk. It returns ctx.Err()
// when cancelled between chunks.
func (r *Revealer) Reveal(ctx context.Context, text string, appendChunk func(string)) error {
	for chunk := range r.Tokens(ctx, text) {
		appendChunk(chunk)
	}
	return ctx.Err()
}
