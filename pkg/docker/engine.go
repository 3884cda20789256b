package docker

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/go-connections/nat"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/pkg/errors"
)

const (
	// DefaultImage is the SQL Server image the dev server runs.
	DefaultImage = "mcr.microsoft.com/mssql/server:2022-latest"

	// serverPort is the SQL Server port inside the container.
	serverPort = 1433

	// ownedLabel marks containers managed by this tool so teardown only
	// ever touches what StartServer created.
	ownedLabel = "schemakeeper.dev"
)

type (
	// APIClient is the slice of the Docker Engine API the dev server uses.
	// *client.Client satisfies it; tests substitute a fake.
	APIClient interface {
		ImagePull(context.Context, string, image.PullOptions) (io.ReadCloser, error)
		ContainerCreate(context.Context, *container.Config, *container.HostConfig, *network.NetworkingConfig, *v1.Platform, string) (container.CreateResponse, error)
		ContainerStart(context.Context, string, container.StartOptions) error
		ContainerList(context.Context, container.ListOptions) ([]container.Summary, error)
		ContainerStop(context.Context, string, container.StopOptions) error
		ContainerRemove(context.Context, string, container.RemoveOptions) error
	}

	// Engine manages the SQL Server development container.
	Engine struct {
		client APIClient
	}

	// ServerOptions configures the dev container.
	ServerOptions struct {
		// Name is the container name.
		Name string

		// Image overrides DefaultImage when set.
		Image string

		// Password is the sa password handed to the server.
		Password string

		// Port is the host port mapped to 1433. Zero lets Docker choose.
		Port int
	}

	// Server describes a running dev container.
	Server struct {
		ID    string
		Name  string
		Image string
		State string
		Port  int
	}
)

// NewEngine wraps an initialized Docker API client.
//
// Example:
//
//	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer cli.Close()
//
//	engine := docker.NewEngine(cli)
func NewEngine(client APIClient) *Engine {
	return &Engine{client: client}
}

// StartServer pulls the image if needed and starts a SQL Server container
// with the EULA accepted and the sa password set. It returns the container
// ID; the container keeps running after the process exits.
func (e *Engine) StartServer(ctx context.Context, opts ServerOptions) (string, error) {
	img := opts.Image
	if img == "" {
		img = DefaultImage
	}

	if err := e.pull(ctx, img); err != nil {
		return "", err
	}

	port := nat.Port(fmt.Sprintf("%d/tcp", serverPort))
	hostPort := ""
	if opts.Port > 0 {
		hostPort = strconv.Itoa(opts.Port)
	}

	resp, err := e.client.ContainerCreate(ctx,
		&container.Config{
			Image: img,
			Env: []string{
				"ACCEPT_EULA=Y",
				"MSSQL_SA_PASSWORD=" + opts.Password,
			},
			ExposedPorts: nat.PortSet{port: struct{}{}},
			Labels:       map[string]string{ownedLabel: "true"},
		},
		&container.HostConfig{
			PortBindings: nat.PortMap{port: []nat.PortBinding{{HostPort: hostPort}}},
		},
		nil,
		nil,
		opts.Name,
	)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create container %s", opts.Name)
	}

	if err := e.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", errors.Wrapf(err, "failed to start container %s", opts.Name)
	}

	return resp.ID, nil
}

// FindServer looks up the labeled dev container by name, running or not.
// It returns nil when no such container exists.
func (e *Engine) FindServer(ctx context.Context, name string) (*Server, error) {
	list, err := e.client.ContainerList(ctx, container.ListOptions{
		All: true,
		Filters: filters.NewArgs(
			filters.Arg("label", ownedLabel+"=true"),
			filters.Arg("name", name),
		),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list containers")
	}
	if len(list) == 0 {
		return nil, nil
	}

	c := list[0]
	server := &Server{ID: c.ID, Image: c.Image, State: c.State}
	if len(c.Names) > 0 {
		server.Name = strings.TrimPrefix(c.Names[0], "/")
	}
	for _, p := range c.Ports {
		if p.PrivatePort == serverPort && p.PublicPort != 0 {
			server.Port = int(p.PublicPort)
		}
	}

	return server, nil
}

// StopServer stops and removes the named dev container.
func (e *Engine) StopServer(ctx context.Context, name string) error {
	timeout := 30
	if err := e.client.ContainerStop(ctx, name, container.StopOptions{Timeout: &timeout}); err != nil {
		return errors.Wrapf(err, "failed to stop container %s", name)
	}

	if err := e.client.ContainerRemove(ctx, name, container.RemoveOptions{Force: true}); err != nil {
		return errors.Wrapf(err, "failed to remove container %s", name)
	}

	return nil
}

func (e *Engine) pull(ctx context.Context, img string) error {
	out, err := e.client.ImagePull(ctx, img, image.PullOptions{})
	if err != nil {
		return errors.Wrapf(err, "failed to pull image %s", img)
	}
	defer func() { _ = out.Close() }()

	// The pull completes when the progress stream is drained.
	_, _ = io.Copy(os.Stdout, out)
	return nil
}
