package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/schemakeeper/pkg/cmd/testutil"
	"github.com/pseudomuto/schemakeeper/pkg/config"
	"github.com/pseudomuto/schemakeeper/pkg/consts"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestInitCommand_BasicInitialization(t *testing.T) {
	tmpDir := t.TempDir()

	err := testutil.RunCommand(t, initCmd(), []string{tmpDir})
	require.NoError(t, err, "Init command should succeed")

	testutil.RequireValidProject(t, tmpDir)

	// Verify default configuration
	cfg, err := config.LoadConfigFile(filepath.Join(tmpDir, consts.ConfigFile))
	require.NoError(t, err)
	require.Equal(t, consts.DefaultHost, cfg.SQLServer.Host)
	require.Equal(t, consts.DefaultPort, cfg.SQLServer.Port)
	require.Equal(t, consts.DefaultBranch, cfg.Repo.Branch)
	require.Empty(t, cfg.Databases)
}

func TestInitCommand_WithDatabases(t *testing.T) {
	tmpDir := t.TempDir()

	err := testutil.RunCommand(t, initCmd(), []string{"--db", "app", "--db", "reporting", tmpDir})
	require.NoError(t, err, "Init command with db flags should succeed")

	testutil.RequireValidProject(t, tmpDir)

	cfg, err := config.LoadConfigFile(filepath.Join(tmpDir, consts.ConfigFile))
	require.NoError(t, err)
	require.Equal(t, []string{"app", "reporting"}, cfg.Databases)

	// Defaults survive the rewrite
	require.Equal(t, consts.DefaultUser, cfg.SQLServer.User)
	require.Equal(t, consts.DefaultDiffPrefix, cfg.Repo.DiffPrefix)
}

func TestInitCommand_IdempotentInitialization(t *testing.T) {
	fixture := testutil.TestProject(t)
	defer fixture.Cleanup()

	// Modify a file to ensure it's not overwritten
	customContent := []byte("# Custom patterns\nbase/TRIGGER/**\n")
	err := os.WriteFile(fixture.GetIgnorePath(), customContent, consts.ModeFile)
	require.NoError(t, err)

	err = testutil.RunCommand(t, initCmd(), []string{fixture.Dir})
	require.NoError(t, err, "Second init should succeed")

	// Verify custom content was preserved
	content, err := os.ReadFile(fixture.GetIgnorePath())
	require.NoError(t, err)
	require.Equal(t, customContent, content, "Custom content should be preserved")

	testutil.RequireValidProject(t, fixture.Dir)
}

func TestInitCommand_PreservesExistingConfig(t *testing.T) {
	tmpDir := t.TempDir()

	// Create an existing config with custom settings
	configPath := filepath.Join(tmpDir, consts.ConfigFile)
	customConfig := `sqlserver:
  host: db.internal
  port: 14330

repo:
  path: schemas
  branch: trunk

databases:
  - app
`
	err := os.WriteFile(configPath, []byte(customConfig), consts.ModeFile)
	require.NoError(t, err)

	err = testutil.RunCommand(t, initCmd(), []string{tmpDir})
	require.NoError(t, err, "Init should succeed with existing config")

	// Verify config was not overwritten
	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Equal(t, customConfig, string(content), "Existing config should be preserved")
}

func TestInitCommand_CreatesMissingDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "nested", "project")

	err := testutil.RunCommand(t, initCmd(), []string{target})
	require.NoError(t, err, "Init should create missing directories")

	testutil.RequireValidProject(t, target)
}

func TestInitCommand_FlagConfiguration(t *testing.T) {
	command := initCmd()

	require.Equal(t, "init", command.Name)
	require.Equal(t, "[dir]", command.ArgsUsage)
	require.Len(t, command.Flags, 1)

	dbFlag := command.Flags[0].(*cli.StringSliceFlag)
	require.Equal(t, "db", dbFlag.Name)
	require.False(t, dbFlag.Required)
}
