package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/errdefs"

	"github.com/nantutech/ntcore/internal/deployer"
)

// Serve contains activities that manage serving containers for deployments.
type Serve struct {
	deployer    deployer.Deployer
	registryURL string
	network     string
}

func NewServe(d deployer.Deployer, registryURL, network string) *Serve {
	return &Serve{deployer: d, registryURL: registryURL, network: network}
}

// containerName is stable per workspace so a new deployment replaces the
// previous serving container instead of piling up alongside it.
func containerName(workspaceID string) string {
	return "ntcore-" + workspaceID
}

// PullModelImageParams names the model image to pull for a version.
type PullModelImageParams struct {
	WorkspaceID string `json:"workspace_id"`
	Version     int    `json:"version"`
}

// PullModelImage pulls the model server image for the given workspace
// version and returns the resolved digest.
func (a *Serve) PullModelImage(ctx context.Context, params PullModelImageParams) (string, error) {
	image := a.modelImage(params.WorkspaceID, params.Version)
	digest, err := a.deployer.PullImage(ctx, image)
	if err != nil {
		return "", fmt.Errorf("pull model image %s: %w", image, err)
	}
	return digest, nil
}

// CreateServingContainerParams describes the serving container to start.
type CreateServingContainerParams struct {
	WorkspaceID   string            `json:"workspace_id"`
	DeploymentID  string            `json:"deployment_id"`
	Version       int               `json:"version"`
	WorkspaceType string            `json:"workspace_type"`
	Env           map[string]string `json:"env,omitempty"`
}

// CreateServingContainerResult reports the started container.
type CreateServingContainerResult struct {
	ContainerID string `json:"container_id"`
	HostPort    int    `json:"host_port"`
}

// CreateServingContainer removes any previous serving container for the
// workspace and starts a fresh one for the deployment.
func (a *Serve) CreateServingContainer(ctx context.Context, params CreateServingContainerParams) (*CreateServingContainerResult, error) {
	name := containerName(params.WorkspaceID)

	// Replace rather than fail when the workspace already serves a
	// container from an earlier deployment. A first deployment has no
	// previous container, so not-found is fine here.
	if err := a.deployer.RemoveContainer(ctx, name); err != nil && !errdefs.IsNotFound(err) {
		return nil, fmt.Errorf("remove previous serving container %s: %w", name, err)
	}

	env := map[string]string{
		"NTCORE_WORKSPACE_ID":  params.WorkspaceID,
		"NTCORE_DEPLOYMENT_ID": params.DeploymentID,
		"NTCORE_MODEL_VERSION": fmt.Sprintf("%d", params.Version),
	}
	for k, v := range params.Env {
		env[k] = v
	}

	opts := deployer.ContainerOpts{
		Name:  name,
		Image: a.modelImage(params.WorkspaceID, params.Version),
		Env:   env,
		Ports: []deployer.PortMapping{{Container: 8080}},
		HealthCheck: &deployer.HealthCheck{
			Test:     []string{"CMD-SHELL", "curl -fsS http://localhost:8080/health || exit 1"},
			Interval: 10 * time.Second,
			Timeout:  5 * time.Second,
			Retries:  5,
		},
		Network: a.network,
	}

	res, err := a.deployer.CreateContainer(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("create serving container %s: %w", name, err)
	}

	return &CreateServingContainerResult{ContainerID: res.ContainerID, HostPort: res.Ports[8080]}, nil
}

// StopServingContainer stops the workspace's serving container if it
// runs. An absent container is already stopped.
func (a *Serve) StopServingContainer(ctx context.Context, workspaceID string) error {
	err := a.deployer.StopContainer(ctx, containerName(workspaceID))
	if err != nil && !errdefs.IsNotFound(err) {
		return err
	}
	return nil
}

// RemoveServingContainer removes the workspace's serving container,
// tolerating an absent one so teardown stays idempotent.
func (a *Serve) RemoveServingContainer(ctx context.Context, workspaceID string) error {
	err := a.deployer.RemoveContainer(ctx, containerName(workspaceID))
	if err != nil && !errdefs.IsNotFound(err) {
		return err
	}
	return nil
}

func (a *Serve) modelImage(workspaceID string, version int) string {
	registry := strings.TrimSuffix(a.registryURL, "/")
	return fmt.Sprintf("%s/%s:v%d", registry, workspaceID, version)
}
