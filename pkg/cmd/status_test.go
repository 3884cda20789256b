package cmd

import (
	"testing"

	"github.com/pseudomuto/schemakeeper/pkg/cmd/testutil"
	"github.com/pseudomuto/schemakeeper/pkg/ignore"
	"github.com/stretchr/testify/require"
)

func TestStatusCommand_UninitializedRepository(t *testing.T) {
	fixture := testutil.TestProject(t).WithDatabases("app")
	defer fixture.Cleanup()

	command := status(fixture.Config, &ignore.Matcher{})

	// The project has no repository yet; status reports that instead of
	// failing.
	err := testutil.RunCommand(t, command, nil)
	require.NoError(t, err)
}

func TestStatusCommand_RequiresDatabases(t *testing.T) {
	fixture := testutil.TestProject(t)
	defer fixture.Cleanup()

	command := status(fixture.Config, &ignore.Matcher{})

	err := testutil.RunCommand(t, command, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no databases selected")
}

func TestStatusCommand_RequiresConfig(t *testing.T) {
	command := status(nil, nil)

	err := testutil.RunCommand(t, command, []string{"--db", "app"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "schemakeeper.yaml not found")
}
