package analysis

import (
	"context"
)

// Upstream is the remote analysis dependency of Analyzer. Implementations
// return the upstream's collected output text, which the caller must treat
// as untrusted.
type Upstream interface {
	Analyze(ctx context.Context, text string) (string, error)
}

// Analyzer runs validated requests through the upstream and normalizes the
// reply. Upstream errors pass through untouched so the HTTP layer can relay
// them; once the upstream answers at all, normalization cannot fail.
type Analyzer struct {
	upstream Upstream
}

// NewAnalyzer creates an Analyzer backed by the given upstream client.
func NewAnalyzer(upstream Upstream) *Analyzer {
	return &Analyzer{upstream: upstream}
}

// Analyze calls the upstream with the request text and returns the
// normalized result. The context carries the inbound request's deadline;
// cancelling it cancels the outbound call.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (Result, error) {
	raw, err := a.upstream.Analyze(ctx, req.Text)
	if err != nil {
		return Result{}, err
	}
	return Normalize(raw), nil
}
