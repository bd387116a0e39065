package orchestrate

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/AnotherFullstackDev/deployctl/internal/clouds"
	"github.com/AnotherFullstackDev/deployctl/internal/config"
	"github.com/AnotherFullstackDev/deployctl/internal/image/registry"
	"github.com/AnotherFullstackDev/deployctl/internal/output"
	"github.com/AnotherFullstackDev/deployctl/internal/preflight"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
}

func (r *recorder) record(call string) {
	r.calls = append(r.calls, call)
}

type mockPreflight struct {
	rec    *recorder
	bucket string
	err    error
}

func (m *mockPreflight) Run(config.Config) (preflight.Result, error) {
	m.rec.record("preflight")
	return preflight.Result{Bucket: m.bucket}, m.err
}

type mockImageService struct {
	rec      *recorder
	buildErr error
	pushErr  error
}

func (m *mockImageService) BuildImage(context.Context) error {
	m.rec.record("build")
	return m.buildErr
}

func (m *mockImageService) PushImage(context.Context) error {
	m.rec.record("push")
	return m.pushErr
}

func (m *mockImageService) GetRegistry() registry.Registry {
	return nil
}

type mockBuckets struct {
	rec *recorder
	err error
}

func (m *mockBuckets) EnsureBucket(_ context.Context, name string) error {
	m.rec.record("ensure-bucket:" + name)
	return m.err
}

func (m *mockBuckets) ApplyCORS(_ context.Context, name string, _ []string) error {
	m.rec.record("cors:" + name)
	return m.err
}

type mockProvider struct {
	rec      *recorder
	endpoint string
	err      error
}

func (m *mockProvider) DeployServiceFromImage(context.Context, clouds.ImageRegistry) (string, error) {
	m.rec.record("deploy")
	return m.endpoint, m.err
}

type mockProber struct {
	rec *recorder
	err error
}

func (m *mockProber) Probe(_ context.Context, endpoint string) error {
	m.rec.record("probe:" + endpoint)
	return m.err
}

type fixture struct {
	rec       *recorder
	preflight *mockPreflight
	image     *mockImageService
	buckets   *mockBuckets
	provider  *mockProvider
	prober    *mockProber
	confirmed bool
}

func newFixture() *fixture {
	rec := &recorder{}
	return &fixture{
		rec:       rec,
		preflight: &mockPreflight{rec: rec, bucket: "acme-assets"},
		image:     &mockImageService{rec: rec},
		buckets:   &mockBuckets{rec: rec},
		provider:  &mockProvider{rec: rec, endpoint: "https://web-abc-uc.a.run.app"},
		prober:    &mockProber{rec: rec},
		confirmed: true,
	}
}

func (f *fixture) orchestrator(cfg config.Config) *Orchestrator {
	confirm := func(string) (bool, error) {
		f.rec.record("confirm")
		return f.confirmed, nil
	}
	newBuckets := func(context.Context) (BucketManager, error) { return f.buckets, nil }
	newProvider := func(context.Context) (clouds.CloudProvider, error) { return f.provider, nil }
	return NewOrchestrator(cfg, f.preflight, f.image, newBuckets, newProvider, f.prober, confirm)
}

func testConfig() config.Config {
	return config.Config{
		ServiceName: "web",
		ProjectID:   "acme-prod",
		Region:      "us-central1",
		Image:       "gcr.io/acme-prod/web:abc",
		CORSOrigins: []string{"*"},
		Memory:      "512Mi",
		CPU:         "1",
	}
}

func TestOrchestratorRun(t *testing.T) {
	r := require.New(t)
	output.Stdout = io.Discard

	t.Run("happy path runs every step in order", func(t *testing.T) {
		f := newFixture()

		err := f.orchestrator(testConfig()).Run(context.Background())
		r.NoError(err)
		r.Equal([]string{
			"preflight",
			"confirm",
			"build",
			"push",
			"ensure-bucket:acme-assets",
			"cors:acme-assets",
			"deploy",
			"probe:https://web-abc-uc.a.run.app",
		}, f.rec.calls)
	})

	t.Run("preflight failure aborts before confirmation", func(t *testing.T) {
		f := newFixture()
		f.preflight.err = errors.New("docker missing")

		err := f.orchestrator(testConfig()).Run(context.Background())
		r.Error(err)
		r.Equal([]string{"preflight"}, f.rec.calls)
	})

	t.Run("declined confirmation returns nil without building", func(t *testing.T) {
		f := newFixture()
		f.confirmed = false

		err := f.orchestrator(testConfig()).Run(context.Background())
		r.NoError(err)
		r.Equal([]string{"preflight", "confirm"}, f.rec.calls)
	})

	t.Run("build failure stops before push", func(t *testing.T) {
		f := newFixture()
		f.image.buildErr = errors.New("compile error")

		err := f.orchestrator(testConfig()).Run(context.Background())
		r.Error(err)
		r.Equal([]string{"preflight", "confirm", "build"}, f.rec.calls)
	})

	t.Run("push failure stops before bucket work", func(t *testing.T) {
		f := newFixture()
		f.image.pushErr = errors.New("unauthorized")

		err := f.orchestrator(testConfig()).Run(context.Background())
		r.Error(err)
		r.Equal([]string{"preflight", "confirm", "build", "push"}, f.rec.calls)
	})

	t.Run("deploy failure is fatal", func(t *testing.T) {
		f := newFixture()
		f.provider.err = errors.New("revision failed to become ready")

		err := f.orchestrator(testConfig()).Run(context.Background())
		r.Error(err)
		r.NotContains(f.rec.calls, "probe:https://web-abc-uc.a.run.app")
	})

	t.Run("failing probe does not fail the run", func(t *testing.T) {
		f := newFixture()
		f.prober.err = errors.New("503")

		err := f.orchestrator(testConfig()).Run(context.Background())
		r.NoError(err)
	})
}
