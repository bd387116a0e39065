// Package health probes the liveness endpoint of a freshly deployed service.
package health

import (
	"context"
	"fmt"

	"github.com/AnotherFullstackDev/deployctl/internal/lib"
)

const livenessPath = "/healthz"

type Prober struct{}

func NewProber() *Prober {
	return &Prober{}
}

// Probe issues a single GET against the service liveness endpoint. The
// deploy has already succeeded at this point, so callers treat a failure as
// a warning rather than a fatal error.
func (p *Prober) Probe(ctx context.Context, endpoint string) error {
	client, err := lib.NewApiClient(endpoint)
	if err != nil {
		return fmt.Errorf("building probe client for %s: %w", endpoint, err)
	}

	resp, err := client.NewGetRequest(ctx, client.URL(livenessPath)).Do()
	if err != nil {
		return fmt.Errorf("probing %s%s: %w", endpoint, livenessPath, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("liveness endpoint %s%s returned status %d", endpoint, livenessPath, resp.StatusCode)
	}

	return nil
}
