package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/client"
	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/config"
	"github.com/pseudomuto/schemakeeper/pkg/consts"
	"github.com/pseudomuto/schemakeeper/pkg/docker"
	"github.com/pseudomuto/schemakeeper/pkg/gitrepo"
	"github.com/pseudomuto/schemakeeper/pkg/mssql"
	"github.com/urfave/cli/v3"
)

func dev(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:   "dev",
		Usage:  "Manage local SQL Server development server",
		Before: requireConfig(cfg),
		Commands: []*cli.Command{
			devUp(),
			devDown(),
		},
	}
}

const (
	devContainerName = "schemakeeper-dev"
	devStartTimeout  = 90 * time.Second
	devRetryInterval = 2 * time.Second
)

func devUp() *cli.Command {
	return &cli.Command{
		Name:   "up",
		Usage:  "Start SQL Server development server and load the repository schema",
		Action: runDevUpCommand,
	}
}

func devDown() *cli.Command {
	return &cli.Command{
		Name:   "down",
		Usage:  "Stop and remove SQL Server development server",
		Action: runDevDownCommand,
	}
}

func runDevUpCommand(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadDevConfig()
	if err != nil {
		return err
	}

	engine, err := newDockerEngine()
	if err != nil {
		return err
	}

	// Check if the server is already running
	server, err := engine.FindServer(ctx, devContainerName)
	if err != nil {
		return errors.Wrap(err, "failed to check for running dev server")
	}

	if server != nil {
		fmt.Println("SQL Server development server is already running")
		fmt.Println("Use 'schemakeeper dev down' to stop it first")
		return nil
	}

	password := cfg.SQLServer.Password()
	if password == "" {
		return errors.Errorf("%s must be set to start the dev server", cfg.SQLServer.PasswordEnv)
	}

	fmt.Println("Starting SQL Server container...")
	id, err := engine.StartServer(ctx, docker.ServerOptions{
		Name:     devContainerName,
		Password: password,
		Port:     cfg.SQLServer.Port,
	})
	if err != nil {
		return errors.Wrap(err, "failed to start SQL Server container")
	}
	// Don't stop the container on exit - it should keep running

	fmt.Printf("SQL Server container started: %.12s\n", id)

	masterClient, err := waitForServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = masterClient.Close() }()

	fmt.Println("Connected to SQL Server")

	if err := seedDatabases(ctx, cfg, masterClient); err != nil {
		return err
	}

	printConnectionDetails(cfg)
	return nil
}

func runDevDownCommand(ctx context.Context, cmd *cli.Command) error {
	engine, err := newDockerEngine()
	if err != nil {
		return err
	}

	server, err := engine.FindServer(ctx, devContainerName)
	if err != nil {
		return errors.Wrap(err, "failed to check for running dev server")
	}

	if server == nil {
		fmt.Println("No SQL Server development server is currently running")
		return nil
	}

	if err := engine.StopServer(ctx, devContainerName); err != nil {
		fmt.Printf("Warning: failed to stop container: %v\n", err)
		fmt.Println("You may need to remove it manually with: docker rm -f " + devContainerName)
		return nil
	}

	fmt.Println("SQL Server development server stopped")
	return nil
}

func loadDevConfig() (*config.Config, error) {
	// Load configuration directly from file (the root command already
	// changed to the project directory)
	cfg, err := config.LoadConfigFile(consts.ConfigFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load project configuration")
	}

	return cfg, nil
}

func newDockerEngine() (*docker.Engine, error) {
	dockerClient, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Docker client")
	}

	return docker.NewEngine(dockerClient), nil
}

// waitForServer polls until the server accepts connections, returning a
// client bound to master. Fresh containers take a while before logins
// succeed.
func waitForServer(ctx context.Context, cfg *config.Config) (*mssql.Client, error) {
	fmt.Println("Waiting for SQL Server to accept connections...")

	deadline := time.Now().Add(devStartTimeout)
	for {
		client, err := mssql.New(ctx, mssql.Config{
			Host:          cfg.SQLServer.Host,
			Port:          cfg.SQLServer.Port,
			User:          cfg.SQLServer.User,
			Password:      cfg.SQLServer.Password(),
			Database:      "master",
			DefaultSchema: cfg.SQLServer.DefaultSchema,
		})
		if err == nil {
			return client, nil
		}

		if time.Now().After(deadline) {
			return nil, errors.Wrap(err, "timed out waiting for SQL Server to start")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(devRetryInterval):
		}
	}
}

// seedDatabases creates each configured database and loads its effective
// repository schema into it. A project without commits yet gets empty
// databases only.
func seedDatabases(ctx context.Context, cfg *config.Config, masterClient *mssql.Client) error {
	if len(cfg.Databases) == 0 {
		fmt.Println("No databases configured - skipping schema load")
		return nil
	}

	for _, db := range cfg.Databases {
		if err := masterClient.EnsureDatabase(ctx, db); err != nil {
			return err
		}
	}

	repo, err := openRepository(cfg, false)
	if err != nil {
		if gitrepo.IsNotExists(err) {
			fmt.Println("No schema repository found - databases created empty")
			return nil
		}

		return err
	}

	if empty, err := repo.IsEmpty(); err != nil {
		return err
	} else if empty {
		fmt.Println("Schema repository has no commits - databases created empty")
		return nil
	}

	matcher, err := cfg.GetIgnoreMatcher()
	if err != nil {
		return err
	}

	engine, closer, err := buildEngine(cfg, matcher, false)
	if err != nil {
		return err
	}
	defer func() { _ = closer() }()

	for _, db := range cfg.Databases {
		desc, err := engine.Seed(ctx, db)
		if err != nil {
			return errors.Wrapf(err, "failed to load schema into %s", db)
		}

		fmt.Printf("  %s\n", desc)
	}

	return nil
}

// maskedDSN renders the configured connection URL with the password
// replaced, safe for terminal output.
func maskedDSN(cfg *config.Config) string {
	masked := mssql.Config{
		Host:     cfg.SQLServer.Host,
		Port:     cfg.SQLServer.Port,
		User:     cfg.SQLServer.User,
		Password: "*****",
	}

	return masked.DSN()
}

func printConnectionDetails(cfg *config.Config) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SQL Server Development Server Started")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("DSN:       %s\n", maskedDSN(cfg))
	fmt.Printf("Password:  $%s\n", cfg.SQLServer.PasswordEnv)
	if len(cfg.Databases) > 0 {
		fmt.Printf("Databases: %s\n", strings.Join(cfg.Databases, ", "))
	}
	fmt.Println("\nUse 'schemakeeper dev down' to stop the server")
	fmt.Println(strings.Repeat("=", 60))
}
