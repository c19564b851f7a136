package deployer

import (
	"context"
	"time"
)

// PortMapping describes a host-to-container port binding.
// Host 0 means "let the runtime pick an ephemeral port".
type PortMapping struct {
	Host      int `json:"host"`
	Container int `json:"container"`
}

// ContainerOpts holds the options for creating a serving container.
type ContainerOpts struct {
	Name        string
	Image       string
	Env         map[string]string
	Ports       []PortMapping
	Resources   Resources
	HealthCheck *HealthCheck
	Network     string // Docker network to attach to (e.g. "ntcore_default")
}

// CreateResult holds the result of creating a container.
type CreateResult struct {
	ContainerID string
	Ports       map[int]int // container port -> actual host port
}

// Resources holds resource constraints for a container.
type Resources struct {
	MemoryMB  int64
	CPUShares int64
}

// HealthCheck holds health check configuration.
type HealthCheck struct {
	Test     []string
	Interval time.Duration
	Timeout  time.Duration
	Retries  int
}

// ContainerStatus holds the status of a container.
type ContainerStatus struct {
	ID      string
	Name    string
	State   string // running, exited, created, etc.
	Health  string // healthy, unhealthy, starting, none
	Running bool
}

// Deployer is the capability interface against the container runtime
// that actually serves models. The deployment state machine never calls
// it directly; workflows compose the two so that alternative runtimes
// can be substituted without touching the lifecycle logic.
type Deployer interface {
	PullImage(ctx context.Context, image string) (digest string, err error)
	CreateContainer(ctx context.Context, opts ContainerOpts) (*CreateResult, error)
	StopContainer(ctx context.Context, containerID string) error
	RemoveContainer(ctx context.Context, containerID string) error
	InspectContainer(ctx context.Context, containerID string) (*ContainerStatus, error)
}
