package pipeline

import (
	"context"
	"sync/atomic"
)

// CancelToken is a cooperative stop flag shared between the caller and a
// running pipeline. The pipeline polls it before each moveset and each file.
type CancelToken struct {
	flag atomic.Bool
}

// NewCancelToken returns an unset token.
func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

// Cancel requests a stop. Calling it more than once is harmless.
func (t *CancelToken) Cancel() {
	if t != nil {
		t.flag.Store(true)
	}
}

// Cancelled reports whether Cancel was called.
func (t *CancelToken) Cancelled() bool {
	return t != nil && t.flag.Load()
}

func stopRequested(ctx context.Context, token *CancelToken) bool {
	return token.Cancelled() || ctx.Err() != nil
}
