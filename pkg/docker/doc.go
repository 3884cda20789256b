// Package docker runs the local SQL Server development container.
//
// The dev workflow stands up a long-lived server on the local Docker
// daemon, loads the repository schema into it, and leaves it running until
// torn down. Containers are created with an ownership label so teardown
// only ever touches what this tool started.
//
// # Usage Example
//
//	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer cli.Close()
//
//	engine := docker.NewEngine(cli)
//
//	id, err := engine.StartServer(ctx, docker.ServerOptions{
//		Name:     "schemakeeper-dev",
//		Password: "Str0ng!Passw0rd",
//		Port:     1433,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// ... connect with pkg/mssql and load the schema ...
//
//	if err := engine.StopServer(ctx, "schemakeeper-dev"); err != nil {
//		log.Fatal(err)
//	}
//
// Throwaway servers for integration tests are a separate concern and use
// testcontainers directly in the test packages that need them.
package docker
