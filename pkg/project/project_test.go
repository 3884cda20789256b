package project_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pseudomuto/schemakeeper/pkg/config"
	"github.com/pseudomuto/schemakeeper/pkg/consts"
	"github.com/pseudomuto/schemakeeper/pkg/project"
	"github.com/stretchr/testify/require"
)

func TestProjectInitialize_CreatesFiles(t *testing.T) {
	t.Run("creates all missing files", func(t *testing.T) {
		tmpDir := t.TempDir()

		proj := project.New(tmpDir)
		err := proj.Initialize(project.InitOptions{})
		require.NoError(t, err)

		// Verify files were created
		require.FileExists(t, filepath.Join(tmpDir, consts.ConfigFile))
		require.FileExists(t, filepath.Join(tmpDir, consts.IgnoreFile))

		// Verify file contents are not empty
		configYAML, err := os.ReadFile(filepath.Join(tmpDir, consts.ConfigFile))
		require.NoError(t, err)
		require.NotEmpty(t, configYAML)

		ignoreFile, err := os.ReadFile(filepath.Join(tmpDir, consts.IgnoreFile))
		require.NoError(t, err)
		require.NotEmpty(t, ignoreFile)

		// The scaffolded config loads with the package defaults
		cfg, err := config.LoadConfigFile(filepath.Join(tmpDir, consts.ConfigFile))
		require.NoError(t, err)
		require.Equal(t, consts.DefaultHost, cfg.SQLServer.Host)
		require.Equal(t, consts.DefaultPort, cfg.SQLServer.Port)
		require.Equal(t, consts.DefaultUser, cfg.SQLServer.User)
		require.Equal(t, consts.DefaultPasswordEnv, cfg.SQLServer.PasswordEnv)
		require.Equal(t, consts.DefaultBranch, cfg.Repo.Branch)
		require.Equal(t, consts.DefaultDiffPrefix, cfg.Repo.DiffPrefix)
		require.Empty(t, cfg.Databases)
	})

	t.Run("creates the project root when missing", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "nested", "project")

		proj := project.New(tmpDir)
		err := proj.Initialize(project.InitOptions{})
		require.NoError(t, err)

		require.DirExists(t, tmpDir)
		require.FileExists(t, filepath.Join(tmpDir, consts.ConfigFile))
	})

	t.Run("exposes the loaded configuration", func(t *testing.T) {
		tmpDir := t.TempDir()

		proj := project.New(tmpDir)
		require.Nil(t, proj.Config())

		require.NoError(t, proj.Initialize(project.InitOptions{}))
		require.NotNil(t, proj.Config())
		require.Equal(t, tmpDir, proj.Root())
	})
}

func TestProjectInitialize_PreservesExisting(t *testing.T) {
	t.Run("preserves existing files", func(t *testing.T) {
		tmpDir := t.TempDir()

		// Create an existing config with custom content
		existingContent := []byte("databases:\n  - custom\n")
		configPath := filepath.Join(tmpDir, consts.ConfigFile)
		require.NoError(t, os.WriteFile(configPath, existingContent, consts.ModeFile))

		// Initialize the project
		proj := project.New(tmpDir)
		err := proj.Initialize(project.InitOptions{})
		require.NoError(t, err)

		// Verify the existing file was not overwritten
		content, err := os.ReadFile(configPath)
		require.NoError(t, err)
		require.Equal(t, existingContent, content)

		// The ignore file was still scaffolded
		require.FileExists(t, filepath.Join(tmpDir, consts.IgnoreFile))
	})

	t.Run("is idempotent", func(t *testing.T) {
		tmpDir := t.TempDir()

		// First initialization
		proj := project.New(tmpDir)
		require.NoError(t, proj.Initialize(project.InitOptions{}))

		// Modify a file
		configPath := filepath.Join(tmpDir, consts.ConfigFile)
		originalContent, err := os.ReadFile(configPath)
		require.NoError(t, err)

		modifiedContent := append(originalContent, []byte("\n# Custom comment")...)
		require.NoError(t, os.WriteFile(configPath, modifiedContent, consts.ModeFile))

		// Second initialization
		proj = project.New(tmpDir)
		require.NoError(t, proj.Initialize(project.InitOptions{}))

		// Verify the modified file was not overwritten
		content, err := os.ReadFile(configPath)
		require.NoError(t, err)
		require.Equal(t, modifiedContent, content)
	})
}

func TestProjectInitialize_ErrorHandling(t *testing.T) {
	t.Run("returns error if root is not a directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		filePath := filepath.Join(tmpDir, "not_a_dir")

		// Create a file instead of directory
		require.NoError(t, os.WriteFile(filePath, []byte("content"), consts.ModeFile))

		proj := project.New(filePath)
		err := proj.Initialize(project.InitOptions{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "not a directory")
	})

	t.Run("handles permission errors gracefully", func(t *testing.T) {
		if os.Getuid() == 0 {
			t.Skip("Cannot test permission errors as root")
		}

		tmpDir := t.TempDir()

		// Create a directory with no write permissions
		readOnlyDir := filepath.Join(tmpDir, "readonly")
		require.NoError(t, os.MkdirAll(readOnlyDir, os.FileMode(0o555)))

		proj := project.New(readOnlyDir)
		err := proj.Initialize(project.InitOptions{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to")
	})
}

func TestProjectInitialize_DatabaseConfiguration(t *testing.T) {
	t.Run("initializes with database list", func(t *testing.T) {
		tmpDir := t.TempDir()

		options := project.InitOptions{
			Databases: []string{"app", "reporting"},
		}

		proj := project.New(tmpDir)
		require.NoError(t, proj.Initialize(options))

		// Verify config file was created and updated with the databases
		configPath := filepath.Join(tmpDir, consts.ConfigFile)
		require.FileExists(t, configPath)

		cfg, err := config.LoadConfigFile(configPath)
		require.NoError(t, err)
		require.Equal(t, []string{"app", "reporting"}, cfg.Databases)

		// Defaults survive the rewrite
		require.Equal(t, consts.DefaultHost, cfg.SQLServer.Host)
		require.Equal(t, consts.DefaultBranch, cfg.Repo.Branch)
	})

	t.Run("keeps the scaffolded list when no databases given", func(t *testing.T) {
		tmpDir := t.TempDir()

		proj := project.New(tmpDir)
		require.NoError(t, proj.Initialize(project.InitOptions{}))

		configContent, err := os.ReadFile(filepath.Join(tmpDir, consts.ConfigFile))
		require.NoError(t, err)

		// The starter file keeps its comments when nothing is rewritten
		require.True(t, strings.HasPrefix(string(configContent), "# schemakeeper"))
	})
}
