// Package orchestrate runs the deployment sequence: preflight, confirmation,
// build, push, bucket setup, deploy, report. Straight-line and fail-fast: the
// first error aborts the run, with no retry and no rollback.
package orchestrate

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/AnotherFullstackDev/deployctl/internal/clouds"
	"github.com/AnotherFullstackDev/deployctl/internal/config"
	"github.com/AnotherFullstackDev/deployctl/internal/image/registry"
	"github.com/AnotherFullstackDev/deployctl/internal/output"
	"github.com/AnotherFullstackDev/deployctl/internal/preflight"
)

type ImageService interface {
	BuildImage(ctx context.Context) error
	PushImage(ctx context.Context) error
	GetRegistry() registry.Registry
}

type PreflightRunner interface {
	Run(cfg config.Config) (preflight.Result, error)
}

type BucketManager interface {
	EnsureBucket(ctx context.Context, name string) error
	ApplyCORS(ctx context.Context, name string, origins []string) error
}

type Prober interface {
	Probe(ctx context.Context, endpoint string) error
}

// ConfirmFunc asks the operator to proceed. Anything but an explicit yes
// declines.
type ConfirmFunc func(prompt string) (bool, error)

// Cloud clients are constructed lazily so that no credential chain or
// network path is touched before preflight and confirmation pass.
type (
	BucketManagerFactory func(ctx context.Context) (BucketManager, error)
	CloudProviderFactory func(ctx context.Context) (clouds.CloudProvider, error)
)

type Orchestrator struct {
	config      config.Config
	preflight   PreflightRunner
	image       ImageService
	newBuckets  BucketManagerFactory
	newProvider CloudProviderFactory
	prober      Prober
	confirm     ConfirmFunc
}

func NewOrchestrator(
	cfg config.Config,
	preflightRunner PreflightRunner,
	imageService ImageService,
	newBuckets BucketManagerFactory,
	newProvider CloudProviderFactory,
	prober Prober,
	confirm ConfirmFunc,
) *Orchestrator {
	return &Orchestrator{
		config:      cfg,
		preflight:   preflightRunner,
		image:       imageService,
		newBuckets:  newBuckets,
		newProvider: newProvider,
		prober:      prober,
		confirm:     confirm,
	}
}

const totalSteps = 5

// Run executes the full deployment. A declined confirmation returns nil
// without invoking the build; every other early return is an error.
func (o *Orchestrator) Run(ctx context.Context) error {
	checks, err := o.preflight.Run(o.config)
	if err != nil {
		return fmt.Errorf("preflight: %w", err)
	}

	o.printSummary(checks.Bucket)

	proceed, err := o.confirm(fmt.Sprintf("Deploy %s to %s (%s)?", o.config.ServiceName, o.config.ProjectID, o.config.Region))
	if err != nil {
		return fmt.Errorf("reading confirmation: %w", err)
	}
	if !proceed {
		output.Info("deployment cancelled")
		return nil
	}

	output.Step(1, totalSteps, "building image")
	if err := o.image.BuildImage(ctx); err != nil {
		return fmt.Errorf("building image for service %s: %w", o.config.ServiceName, err)
	}

	output.Step(2, totalSteps, "pushing image")
	if err := o.image.PushImage(ctx); err != nil {
		return fmt.Errorf("pushing image for service %s: %w", o.config.ServiceName, err)
	}

	buckets, err := o.newBuckets(ctx)
	if err != nil {
		return fmt.Errorf("creating storage client: %w", err)
	}

	output.Step(3, totalSteps, "ensuring storage bucket")
	if err := buckets.EnsureBucket(ctx, checks.Bucket); err != nil {
		return fmt.Errorf("ensuring bucket %s: %w", checks.Bucket, err)
	}

	output.Step(4, totalSteps, "applying bucket CORS policy")
	if err := buckets.ApplyCORS(ctx, checks.Bucket, o.config.CORSOrigins); err != nil {
		return fmt.Errorf("applying CORS policy to bucket %s: %w", checks.Bucket, err)
	}

	provider, err := o.newProvider(ctx)
	if err != nil {
		return fmt.Errorf("creating cloud provider client: %w", err)
	}

	output.Step(5, totalSteps, "deploying service")
	endpoint, err := provider.DeployServiceFromImage(ctx, o.image.GetRegistry())
	if err != nil {
		return fmt.Errorf("deploying service %s: %w", o.config.ServiceName, err)
	}

	output.Endpoint(endpoint)
	if o.config.Hostname != "" {
		output.Info("custom hostname: https://%s", o.config.Hostname)
	}

	o.probeEndpoint(ctx, endpoint)

	return nil
}

// probeEndpoint is best-effort: the deploy already succeeded, so a failing
// probe is surfaced as a warning only.
func (o *Orchestrator) probeEndpoint(ctx context.Context, endpoint string) {
	if endpoint == "" {
		return
	}

	if err := o.prober.Probe(ctx, endpoint); err != nil {
		slog.WarnContext(ctx, "liveness probe failed", "endpoint", endpoint, "error", err)
		output.Warning("liveness probe failed: %v", err)
		return
	}

	output.Success("liveness probe passed")
}

func (o *Orchestrator) printSummary(bucket string) {
	output.Blank()
	output.Info("deployment summary")
	output.KeyValue("service", o.config.ServiceName)
	output.KeyValue("project", o.config.ProjectID)
	output.KeyValue("region", o.config.Region)
	output.KeyValue("image", o.config.Image)
	output.KeyValue("bucket", bucket)
	output.KeyValue("memory", o.config.Memory)
	output.KeyValue("cpu", o.config.CPU)
	output.KeyValue("concurrency", strconv.Itoa(o.config.Concurrency))
	output.KeyValue("max instances", strconv.Itoa(o.config.MaxInstances))
	output.KeyValue("cors origins", strings.Join(o.config.CORSOrigins, ", "))
	if o.config.ServiceAccount != "" {
		output.KeyValue("service account", o.config.ServiceAccount)
	}
	output.Blank()
}
