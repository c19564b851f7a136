package deployer

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// DockerDeployer implements Deployer using the Docker API. The target
// daemon is taken from the environment (DOCKER_HOST etc.), which covers
// both local single-host setups and a remote serving host.
type DockerDeployer struct{}

func NewDockerDeployer() *DockerDeployer {
	return &DockerDeployer{}
}

func (d *DockerDeployer) newClient() (*client.Client, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}

func (d *DockerDeployer) PullImage(ctx context.Context, img string) (string, error) {
	cli, err := d.newClient()
	if err != nil {
		return "", fmt.Errorf("create docker client: %w", err)
	}
	defer cli.Close()

	reader, err := cli.ImagePull(ctx, img, image.PullOptions{})
	if err != nil {
		return "", fmt.Errorf("pull image %s: %w", img, err)
	}
	defer reader.Close()
	// Drain the pull output.
	_, _ = io.Copy(io.Discard, reader)

	inspect, _, err := cli.ImageInspectWithRaw(ctx, img)
	if err != nil {
		return "", fmt.Errorf("inspect image %s: %w", img, err)
	}

	digest := ""
	if len(inspect.RepoDigests) > 0 {
		digest = inspect.RepoDigests[0]
	}
	return digest, nil
}

func (d *DockerDeployer) CreateContainer(ctx context.Context, opts ContainerOpts) (*CreateResult, error) {
	cli, err := d.newClient()
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	defer cli.Close()

	env := make([]string, 0, len(opts.Env))
	for k, v := range opts.Env {
		env = append(env, k+"="+v)
	}

	exposedPorts := nat.PortSet{}
	portBindings := nat.PortMap{}
	for _, pm := range opts.Ports {
		cp := nat.Port(strconv.Itoa(pm.Container) + "/tcp")
		exposedPorts[cp] = struct{}{}
		hostPort := strconv.Itoa(pm.Host)
		if pm.Host == 0 {
			hostPort = "" // let Docker pick an ephemeral port
		}
		portBindings[cp] = []nat.PortBinding{
			{HostPort: hostPort},
		}
	}

	config := &container.Config{
		Image:        opts.Image,
		Env:          env,
		ExposedPorts: exposedPorts,
	}

	if opts.HealthCheck != nil {
		config.Healthcheck = &container.HealthConfig{
			Test:     opts.HealthCheck.Test,
			Interval: opts.HealthCheck.Interval,
			Timeout:  opts.HealthCheck.Timeout,
			Retries:  opts.HealthCheck.Retries,
		}
	}

	hostConfig := &container.HostConfig{
		PortBindings: portBindings,
		Resources: container.Resources{
			Memory:    opts.Resources.MemoryMB * 1024 * 1024,
			CPUShares: opts.Resources.CPUShares,
		},
	}

	var networkConfig *network.NetworkingConfig
	if opts.Network != "" {
		networkConfig = &network.NetworkingConfig{
			EndpointsConfig: map[string]*network.EndpointSettings{
				opts.Network: {},
			},
		}
	}

	resp, err := cli.ContainerCreate(ctx, config, hostConfig, networkConfig, nil, opts.Name)
	if err != nil {
		return nil, fmt.Errorf("create container %s: %w", opts.Name, err)
	}

	if err := cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("start container %s: %w", opts.Name, err)
	}

	// Inspect to get actual port mappings (needed for ephemeral ports).
	result := &CreateResult{
		ContainerID: resp.ID,
		Ports:       make(map[int]int),
	}
	info, err := cli.ContainerInspect(ctx, resp.ID)
	if err == nil {
		for containerPort, bindings := range info.NetworkSettings.Ports {
			if len(bindings) > 0 && bindings[0].HostPort != "" {
				cp := containerPort.Int()
				hp, _ := strconv.Atoi(bindings[0].HostPort)
				result.Ports[cp] = hp
			}
		}
	}

	return result, nil
}

func (d *DockerDeployer) StopContainer(ctx context.Context, containerID string) error {
	cli, err := d.newClient()
	if err != nil {
		return fmt.Errorf("create docker client: %w", err)
	}
	defer cli.Close()

	return cli.ContainerStop(ctx, containerID, container.StopOptions{})
}

func (d *DockerDeployer) RemoveContainer(ctx context.Context, containerID string) error {
	cli, err := d.newClient()
	if err != nil {
		return fmt.Errorf("create docker client: %w", err)
	}
	defer cli.Close()

	return cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true})
}

func (d *DockerDeployer) InspectContainer(ctx context.Context, containerID string) (*ContainerStatus, error) {
	cli, err := d.newClient()
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	defer cli.Close()

	info, err := cli.ContainerInspect(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("inspect container %s: %w", containerID, err)
	}

	health := "none"
	if info.State.Health != nil {
		health = info.State.Health.Status
	}

	return &ContainerStatus{
		ID:      info.ID,
		Name:    info.Name,
		State:   info.State.Status,
		Health:  health,
		Running: info.State.Running,
	}, nil
}
