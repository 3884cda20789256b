package cmd

import (
	"testing"

	"github.com/pseudomuto/schemakeeper/pkg/cmd/testutil"
	"github.com/pseudomuto/schemakeeper/pkg/ignore"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestBootstrapCommand_RequiresDB(t *testing.T) {
	fixture := testutil.TestProject(t)
	defer fixture.Cleanup()

	command := bootstrap(fixture.Config, &ignore.Matcher{})

	err := testutil.RunCommand(t, command, nil) // No --db flag
	require.Error(t, err)
	require.Contains(t, err.Error(), "Required flag \"db\" not set")
}

func TestBootstrapCommand_RequiresConfig(t *testing.T) {
	command := bootstrap(nil, nil)

	err := testutil.RunCommand(t, command, []string{"--db", "app"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "schemakeeper.yaml not found")
}

func TestBootstrapCommand_ConnectionFailure(t *testing.T) {
	fixture := testutil.TestProject(t)
	defer fixture.Cleanup()

	// Nothing listens on port 1, so the command gets past validation and
	// fails reaching the server.
	fixture.Config.SQLServer.Port = 1

	command := bootstrap(fixture.Config, &ignore.Matcher{})

	err := testutil.RunCommand(t, command, []string{"--db", "app"})
	require.Error(t, err)
	require.NotContains(t, err.Error(), "Required flag")
}

func TestBootstrapCommand_FlagConfiguration(t *testing.T) {
	command := bootstrap(nil, nil)

	require.Equal(t, "bootstrap", command.Name)
	require.Equal(t, "Seed an empty schema repository from an existing database", command.Usage)
	require.NotNil(t, command.Before)
	require.Len(t, command.Flags, 1)

	dbFlag := command.Flags[0].(*cli.StringFlag)
	require.Equal(t, "db", dbFlag.Name)
	require.True(t, dbFlag.Required)
}
