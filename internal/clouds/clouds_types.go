package clouds

import (
	"context"
)

type ImageRegistry interface {
	GetImageRef() (string, error)
}

// CloudProvider deploys an already-pushed image and returns the serving
// endpoint of the deployed service.
type CloudProvider interface {
	DeployServiceFromImage(ctx context.Context, registry ImageRegistry) (endpoint string, err error)
}
