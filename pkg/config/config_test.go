package config_test

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/pseudomuto/schemakeeper/pkg/config"
	"github.com/pseudomuto/schemakeeper/pkg/consts"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/schemakeeper.yaml
var testConfigYAML string

func TestLoadConfig(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		config, err := LoadConfig(strings.NewReader(testConfigYAML))
		require.NoError(t, err)
		validateTestConfig(t, config)
	})

	t.Run("error", func(t *testing.T) {
		// Invalid YAML
		config, err := LoadConfig(strings.NewReader("invalid: yaml: ["))
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "failed to unmarshal project config")

		// Empty input
		config, err = LoadConfig(strings.NewReader(""))
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "failed to unmarshal project config")

		// Valid YAML with no project fields
		config, err = LoadConfig(strings.NewReader("other_key: value"))
		require.NoError(t, err)
		require.NotNil(t, config)
		require.Equal(t, consts.DefaultHost, config.SQLServer.Host)
		require.Equal(t, consts.DefaultPort, config.SQLServer.Port)
		require.Equal(t, consts.DefaultUser, config.SQLServer.User)
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		// Create temporary file with embedded YAML content
		tempFile, err := os.CreateTemp("", "schemakeeper_test_*.yaml")
		require.NoError(t, err)
		defer os.Remove(tempFile.Name())

		_, err = tempFile.WriteString(testConfigYAML)
		require.NoError(t, err)
		require.NoError(t, tempFile.Close())

		// Test loading from file
		config, err := LoadConfigFile(tempFile.Name())
		require.NoError(t, err)
		validateTestConfig(t, config)
	})

	t.Run("error", func(t *testing.T) {
		// Nonexistent file
		config, err := LoadConfigFile("nonexistent.yaml")
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "failed to open file")

		// Create temporary directory to test directory access
		tempDir, err := os.MkdirTemp("", "schemakeeper_test_dir")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		// Directory instead of file
		config, err = LoadConfigFile(tempDir)
		require.Error(t, err)
		require.Nil(t, config)
		// Error message can vary by system, so check for either possibility
		require.True(t, strings.Contains(err.Error(), "failed to open file") ||
			strings.Contains(err.Error(), "failed to unmarshal project config"))
	})
}

// validateTestConfig validates that a config contains the expected test data
func validateTestConfig(t *testing.T, config *Config) {
	t.Helper()
	require.NotNil(t, config)
	require.Equal(t, "db.internal", config.SQLServer.Host)
	require.Equal(t, 14330, config.SQLServer.Port)
	require.Equal(t, "schemakeeper", config.SQLServer.User)
	require.Equal(t, "SCHEMAKEEPER_PASSWORD", config.SQLServer.PasswordEnv)
	require.Equal(t, "app", config.SQLServer.DefaultSchema)
	require.Equal(t, "schemas", config.Repo.Path)
	require.Equal(t, "trunk", config.Repo.Branch)
	require.Equal(t, "upstream", config.Repo.Remote)
	require.Equal(t, "envs", config.Repo.DiffPrefix)
	require.Equal(t, "Schema Bot", config.Repo.AuthorName)
	require.Equal(t, "schema-bot@example.com", config.Repo.AuthorEmail)
	require.Equal(t, []string{"app", "reporting"}, config.Databases)
	require.Equal(t, ".schemaignore", config.IgnoreFile)
	require.Equal(t, 4, config.Workers)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Run("keeps configured values when set", func(t *testing.T) {
		yamlData := `
sqlserver:
  host: tracked.example.com
  port: 1533
  user: syncer
  password_env: SYNCER_PASSWORD
  default_schema: sales
repo:
  branch: develop
workers: 2
`
		config, err := LoadConfig(strings.NewReader(yamlData))
		require.NoError(t, err)
		require.Equal(t, "tracked.example.com", config.SQLServer.Host)
		require.Equal(t, 1533, config.SQLServer.Port)
		require.Equal(t, "syncer", config.SQLServer.User)
		require.Equal(t, "SYNCER_PASSWORD", config.SQLServer.PasswordEnv)
		require.Equal(t, "sales", config.SQLServer.DefaultSchema)
		require.Equal(t, "develop", config.Repo.Branch)
		require.Equal(t, 2, config.Workers)
	})

	t.Run("sets default values when empty", func(t *testing.T) {
		yamlData := `
sqlserver:
  host: ""
  user: ""
repo:
  branch: ""
  diff_prefix: ""
`
		config, err := LoadConfig(strings.NewReader(yamlData))
		require.NoError(t, err)
		require.Equal(t, consts.DefaultHost, config.SQLServer.Host)
		require.Equal(t, consts.DefaultUser, config.SQLServer.User)
		require.Equal(t, consts.DefaultBranch, config.Repo.Branch)
		require.Equal(t, consts.DefaultDiffPrefix, config.Repo.DiffPrefix)
	})

	t.Run("sets defaults when sections missing", func(t *testing.T) {
		yamlData := `
databases:
  - app
`
		config, err := LoadConfig(strings.NewReader(yamlData))
		require.NoError(t, err)
		require.Equal(t, consts.DefaultHost, config.SQLServer.Host)
		require.Equal(t, consts.DefaultPort, config.SQLServer.Port)
		require.Equal(t, consts.DefaultUser, config.SQLServer.User)
		require.Equal(t, consts.DefaultPasswordEnv, config.SQLServer.PasswordEnv)
		require.Equal(t, consts.DefaultSchemaName, config.SQLServer.DefaultSchema)
		require.Equal(t, ".", config.Repo.Path)
		require.Equal(t, consts.DefaultBranch, config.Repo.Branch)
		require.Equal(t, consts.DefaultRemote, config.Repo.Remote)
		require.Equal(t, consts.DefaultDiffPrefix, config.Repo.DiffPrefix)
		require.Equal(t, consts.DefaultAuthorName, config.Repo.AuthorName)
		require.Equal(t, consts.DefaultAuthorEmail, config.Repo.AuthorEmail)
		require.Equal(t, consts.IgnoreFile, config.IgnoreFile)
		require.Equal(t, consts.DefaultWorkers, config.Workers)
	})

	t.Run("treats negative workers as unset", func(t *testing.T) {
		config, err := LoadConfig(strings.NewReader("workers: -3"))
		require.NoError(t, err)
		require.Equal(t, consts.DefaultWorkers, config.Workers)
	})
}

func TestSQLServerPassword(t *testing.T) {
	t.Run("reads from configured variable", func(t *testing.T) {
		t.Setenv("SCHEMAKEEPER_TEST_PASSWORD", "s3cret")

		server := SQLServer{PasswordEnv: "SCHEMAKEEPER_TEST_PASSWORD"}
		require.Equal(t, "s3cret", server.Password())
	})

	t.Run("empty when variable unset", func(t *testing.T) {
		server := SQLServer{PasswordEnv: "SCHEMAKEEPER_TEST_UNSET"}
		require.Empty(t, server.Password())
	})
}

func TestGetIgnoreMatcher(t *testing.T) {
	t.Run("nil config processes everything", func(t *testing.T) {
		var config *Config

		matcher, err := config.GetIgnoreMatcher()
		require.NoError(t, err)
		require.True(t, matcher.ShouldProcess("base/TABLE/dbo/users.sql"))
	})

	t.Run("missing file processes everything", func(t *testing.T) {
		config := &Config{IgnoreFile: "testdata/nonexistent.syncignore"}

		matcher, err := config.GetIgnoreMatcher()
		require.NoError(t, err)
		require.True(t, matcher.ShouldProcess("base/TABLE/dbo/users.sql"))
	})

	t.Run("loads patterns from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ignore")
		require.NoError(t, os.WriteFile(path, []byte("**/TRIGGER/**\n"), consts.ModeFile))

		config := &Config{IgnoreFile: path}

		matcher, err := config.GetIgnoreMatcher()
		require.NoError(t, err)
		require.False(t, matcher.ShouldProcess("base/TRIGGER/dbo/trg_audit.sql"))
		require.True(t, matcher.ShouldProcess("base/TABLE/dbo/users.sql"))
	})
}
