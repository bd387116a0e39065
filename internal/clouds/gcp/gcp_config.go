package gcp

type CloudRunConfig struct {
	ServiceName string
	ProjectID   string
	Region      string

	Memory         string
	CPU            string
	TimeoutSeconds int
	Concurrency    int
	MaxInstances   int
	Port           int

	ServiceAccount       string
	AllowUnauthenticated bool
}
