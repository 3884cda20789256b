package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/schemakeeper/pkg/config"
	"github.com/pseudomuto/schemakeeper/pkg/consts"
	"github.com/pseudomuto/schemakeeper/pkg/project"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// ProjectFixture represents a test project environment with its loaded
// configuration.
type ProjectFixture struct {
	Dir    string
	Config *config.Config
	t      *testing.T
}

// TestProject creates an isolated temp directory with an initialized
// schemakeeper project and returns it together with the loaded
// configuration.
func TestProject(t *testing.T) *ProjectFixture {
	t.Helper()

	tmpDir := t.TempDir()

	err := project.New(tmpDir).Initialize(project.InitOptions{})
	require.NoError(t, err, "Failed to initialize test project")

	cfg, err := config.LoadConfigFile(filepath.Join(tmpDir, consts.ConfigFile))
	require.NoError(t, err, "Failed to load config file")

	// Commands resolve the repository path against the working directory,
	// which for tests is not the project directory.
	if !filepath.IsAbs(cfg.Repo.Path) {
		cfg.Repo.Path = filepath.Join(tmpDir, cfg.Repo.Path)
	}

	return &ProjectFixture{
		Dir:    tmpDir,
		Config: cfg,
		t:      t,
	}
}

// WithDatabases records databases in the fixture's configuration and
// rewrites the config file.
func (p *ProjectFixture) WithDatabases(dbs ...string) *ProjectFixture {
	p.t.Helper()

	p.Config.Databases = dbs
	require.NoError(p.t, p.writeConfig(p.GetConfigPath()), "Failed to write updated config")

	return p
}

// WithIgnorePatterns replaces the fixture's ignore file content.
func (p *ProjectFixture) WithIgnorePatterns(patterns ...string) *ProjectFixture {
	p.t.Helper()

	content := ""
	for _, pattern := range patterns {
		content += pattern + "\n"
	}

	err := os.WriteFile(filepath.Join(p.Dir, consts.IgnoreFile), []byte(content), consts.ModeFile)
	require.NoError(p.t, err, "Failed to write ignore file")

	return p
}

// Cleanup removes all test resources (automatically handled by t.TempDir())
func (p *ProjectFixture) Cleanup() {
	// No-op as t.TempDir() handles cleanup automatically
	// This method exists for explicit cleanup if needed in the future
}

// GetConfigPath returns the path to the schemakeeper.yaml file
func (p *ProjectFixture) GetConfigPath() string {
	return filepath.Join(p.Dir, consts.ConfigFile)
}

// GetIgnorePath returns the path to the .syncignore file
func (p *ProjectFixture) GetIgnorePath() string {
	return filepath.Join(p.Dir, consts.IgnoreFile)
}

// writeConfig writes the configuration to a file
func (p *ProjectFixture) writeConfig(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	defer encoder.Close()

	return encoder.Encode(p.Config)
}
