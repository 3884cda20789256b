package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/schemakeeper/pkg/consts"
	"github.com/stretchr/testify/require"
)

// RequireValidProject asserts that a project structure is correctly initialized
func RequireValidProject(t *testing.T, projectDir string) {
	t.Helper()

	require.FileExists(t, filepath.Join(projectDir, consts.ConfigFile), "schemakeeper.yaml should exist")
	require.FileExists(t, filepath.Join(projectDir, consts.IgnoreFile), ".syncignore should exist")
}

// RequireFileExists asserts that a file exists and optionally checks its content
func RequireFileExists(t *testing.T, path string, checks ...func(content string)) {
	t.Helper()

	require.FileExists(t, path, "File should exist: %s", path)

	if len(checks) > 0 {
		content, err := os.ReadFile(path)
		require.NoError(t, err, "Failed to read file: %s", path)

		contentStr := string(content)
		for _, check := range checks {
			check(contentStr)
		}
	}
}

// RequireFileContains returns a check function that verifies file contains text
func RequireFileContains(t *testing.T, expected string) func(string) {
	return func(content string) {
		require.Contains(t, content, expected, "File should contain: %s", expected)
	}
}

// RequireFileNotContains returns a check function that verifies file doesn't contain text
func RequireFileNotContains(t *testing.T, unexpected string) func(string) {
	return func(content string) {
		require.NotContains(t, content, unexpected, "File should not contain: %s", unexpected)
	}
}

// RequireConfigValid asserts that a schemakeeper.yaml file is valid
func RequireConfigValid(t *testing.T, configPath string, checks ...func(content string)) {
	t.Helper()

	RequireFileExists(t, configPath, func(content string) {
		// Basic YAML structure checks
		require.Contains(t, content, "sqlserver:", "Config should have sqlserver section")
		require.Contains(t, content, "repo:", "Config should have repo section")

		// Run additional checks
		for _, check := range checks {
			check(content)
		}
	})
}
