package sources

import (
	"context"

	"github.com/viralscope/viralscope/pkg/covid"
)

// Source abstracts where a dashboard refresh gets its numbers from.
type Source interface {
	Name() string
	// Fetch returns a complete dataset or an error. Implementations must
	// honour ctx cancellation and never return a partial dataset.
	Fetch(ctx context.Context) (covid.Dataset, error)
}
