package gcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	iampb "cloud.google.com/go/iam/apiv1/iampb"
	run "cloud.google.com/go/run/apiv2"
	runpb "cloud.google.com/go/run/apiv2/runpb"
	"github.com/AnotherFullstackDev/deployctl/internal/clouds"
	"github.com/AnotherFullstackDev/deployctl/internal/lib"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
)

const (
	deployWaitTimeout = 15 * time.Minute
	invokerRole       = "roles/run.invoker"
	allUsersMember    = "allUsers"
	livenessPath      = "/healthz"
)

type CloudRunProvider struct {
	config CloudRunConfig
	client *run.ServicesClient
}

func NewCloudRunProvider(ctx context.Context, config CloudRunConfig) (*CloudRunProvider, error) {
	if config.ServiceName == "" {
		return nil, fmt.Errorf("%w - Cloud Run service name is required", lib.BadUserInputError)
	}
	if config.ProjectID == "" {
		return nil, fmt.Errorf("%w - Cloud Run project ID is required", lib.BadUserInputError)
	}
	if config.Region == "" {
		return nil, fmt.Errorf("%w - Cloud Run region is required", lib.BadUserInputError)
	}

	// Uses Application Default Credentials
	client, err := run.NewServicesClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating Cloud Run services client: %w", err)
	}

	return &CloudRunProvider{
		config: config,
		client: client,
	}, nil
}

func (p *CloudRunProvider) parent() string {
	return fmt.Sprintf("projects/%s/locations/%s", p.config.ProjectID, p.config.Region)
}

func (p *CloudRunProvider) serviceName() string {
	return fmt.Sprintf("%s/services/%s", p.parent(), p.config.ServiceName)
}

// revisionTemplate assembles the revision from the fixed deployment
// parameters. The same parameters are applied on every deploy.
func (p *CloudRunProvider) revisionTemplate(imageRef string) *runpb.RevisionTemplate {
	return &runpb.RevisionTemplate{
		Containers: []*runpb.Container{{
			Image: imageRef,
			Ports: []*runpb.ContainerPort{{
				ContainerPort: int32(p.config.Port),
			}},
			Resources: &runpb.ResourceRequirements{
				Limits: map[string]string{
					"memory": p.config.Memory,
					"cpu":    p.config.CPU,
				},
			},
			LivenessProbe: &runpb.Probe{
				ProbeType: &runpb.Probe_HttpGet{
					HttpGet: &runpb.HTTPGetAction{
						Path: livenessPath,
						Port: int32(p.config.Port),
					},
				},
			},
		}},
		MaxInstanceRequestConcurrency: int32(p.config.Concurrency),
		Timeout:                       durationpb.New(time.Duration(p.config.TimeoutSeconds) * time.Second),
		Scaling: &runpb.RevisionScaling{
			MaxInstanceCount: int32(p.config.MaxInstances),
		},
		ServiceAccount: p.config.ServiceAccount,
	}
}

func (p *CloudRunProvider) DeployServiceFromImage(ctx context.Context, registry clouds.ImageRegistry) (string, error) {
	imageRef, err := registry.GetImageRef()
	if err != nil {
		return "", fmt.Errorf("getting image reference for service %s: %w", p.config.ServiceName, err)
	}
	if imageRef == "" {
		return "", fmt.Errorf("image reference is empty for service %s", p.config.ServiceName)
	}

	serviceName := p.serviceName()

	slog.DebugContext(ctx, "fetching current Cloud Run service configuration",
		"service", serviceName)

	service, err := p.client.GetService(ctx, &runpb.GetServiceRequest{
		Name: serviceName,
	})

	var deployed *runpb.Service
	switch {
	case status.Code(err) == codes.NotFound:
		deployed, err = p.createService(ctx, imageRef)
	case err != nil:
		return "", fmt.Errorf("getting Cloud Run service %s: %w", serviceName, err)
	default:
		deployed, err = p.updateService(ctx, service, imageRef)
	}
	if err != nil {
		return "", err
	}

	if p.config.AllowUnauthenticated {
		if err := p.allowUnauthenticated(ctx); err != nil {
			return "", fmt.Errorf("granting public access to service %s: %w", serviceName, err)
		}
	}

	slog.InfoContext(ctx, "Cloud Run service deployment completed",
		"service", p.config.ServiceName,
		"image", imageRef,
		"uri", deployed.Uri)

	return deployed.Uri, nil
}

func (p *CloudRunProvider) createService(ctx context.Context, imageRef string) (*runpb.Service, error) {
	slog.InfoContext(ctx, "creating Cloud Run service",
		"service", p.config.ServiceName,
		"image", imageRef)

	op, err := p.client.CreateService(ctx, &runpb.CreateServiceRequest{
		Parent:    p.parent(),
		ServiceId: p.config.ServiceName,
		Service: &runpb.Service{
			Template: p.revisionTemplate(imageRef),
			Ingress:  runpb.IngressTraffic_INGRESS_TRAFFIC_ALL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating Cloud Run service %s: %w", p.serviceName(), err)
	}

	return p.waitForService(ctx, func(ctx context.Context) (*runpb.Service, error) {
		return op.Wait(ctx)
	})
}

func (p *CloudRunProvider) updateService(ctx context.Context, service *runpb.Service, imageRef string) (*runpb.Service, error) {
	if service.Template == nil {
		return nil, fmt.Errorf("%w - Cloud Run service %s has no template configured", lib.BadUserInputError, p.serviceName())
	}

	currentImage := ""
	if len(service.Template.Containers) > 0 {
		currentImage = service.Template.Containers[0].Image
	}

	slog.InfoContext(ctx, "updating Cloud Run service",
		"service", p.config.ServiceName,
		"from", currentImage,
		"to", imageRef)

	// Apply the fixed deployment parameters while keeping fields this tool
	// does not manage (env vars, volumes, traffic splits) as they are.
	fresh := p.revisionTemplate(imageRef)
	if len(service.Template.Containers) > 0 {
		fresh.Containers[0].Env = service.Template.Containers[0].Env
		fresh.Containers[0].VolumeMounts = service.Template.Containers[0].VolumeMounts
	}
	service.Template.Containers = fresh.Containers
	service.Template.MaxInstanceRequestConcurrency = fresh.MaxInstanceRequestConcurrency
	service.Template.Timeout = fresh.Timeout
	service.Template.Scaling = fresh.Scaling
	if fresh.ServiceAccount != "" {
		service.Template.ServiceAccount = fresh.ServiceAccount
	}

	op, err := p.client.UpdateService(ctx, &runpb.UpdateServiceRequest{
		Service: service,
	})
	if err != nil {
		return nil, fmt.Errorf("updating Cloud Run service %s: %w", p.serviceName(), err)
	}

	return p.waitForService(ctx, func(ctx context.Context) (*runpb.Service, error) {
		return op.Wait(ctx)
	})
}

func (p *CloudRunProvider) waitForService(ctx context.Context, wait func(context.Context) (*runpb.Service, error)) (*runpb.Service, error) {
	slog.InfoContext(ctx, "waiting for Cloud Run service deployment to complete",
		"service", p.config.ServiceName)

	waitCtx, cancel := context.WithTimeout(ctx, deployWaitTimeout)
	defer cancel()

	service, err := wait(waitCtx)
	if err != nil {
		return nil, fmt.Errorf("waiting for Cloud Run service deployment to complete: %w", err)
	}

	return service, nil
}

// allowUnauthenticated grants roles/run.invoker to allUsers. A no-op when
// the binding already exists.
func (p *CloudRunProvider) allowUnauthenticated(ctx context.Context) error {
	serviceName := p.serviceName()

	policy, err := p.client.GetIamPolicy(ctx, &iampb.GetIamPolicyRequest{
		Resource: serviceName,
	})
	if err != nil {
		return fmt.Errorf("getting IAM policy: %w", err)
	}

	for _, binding := range policy.Bindings {
		if binding.Role == invokerRole && slices.Contains(binding.Members, allUsersMember) {
			slog.DebugContext(ctx, "public invoker binding already present", "service", serviceName)
			return nil
		}
	}

	policy.Bindings = append(policy.Bindings, &iampb.Binding{
		Role:    invokerRole,
		Members: []string{allUsersMember},
	})

	if _, err := p.client.SetIamPolicy(ctx, &iampb.SetIamPolicyRequest{
		Resource: serviceName,
		Policy:   policy,
	}); err != nil {
		return fmt.Errorf("setting IAM policy: %w", err)
	}

	slog.InfoContext(ctx, "granted unauthenticated access", "service", serviceName)

	return nil
}

// Close closes the Cloud Run client connection
func (p *CloudRunProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
