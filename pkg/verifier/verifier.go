// Package verifier defines the external page-verification collaborator.
package verifier

import (
	"context"

	"github.com/Ramsey-B/clover/pkg/models"
)

// Verifier inspects a candidate's product page and reports what it
// found. Implementations live outside the core: a scraper, a vision
// fallback, or a language-model critic. A failed verification returns
// an error; the caller falls back to text-only scoring instead of
// propagating it.
type Verifier interface {
	Verify(ctx context.Context, candidate models.RawCandidate) (*models.VerificationInfo, error)
}

// Func adapts a function to the Verifier interface.
type Func func(ctx context.Context, candidate models.RawCandidate) (*models.VerificationInfo, error)

// Verify implements Verifier.
func (f Func) Verify(ctx context.Context, candidate models.RawCandidate) (*models.VerificationInfo, error) {
	return f(ctx, candidate)
}
