package project

import (
	_ "embed"
	"os"
	"path/filepath"
	"testing/fstest"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/config"
	"github.com/pseudomuto/schemakeeper/pkg/consts"
	"gopkg.in/yaml.v3"
)

var (
	//go:embed embed/schemakeeper.yaml
	defaultConfig []byte

	//go:embed embed/syncignore
	defaultIgnore []byte

	image = fstest.MapFS{
		consts.ConfigFile: {Data: defaultConfig},
		consts.IgnoreFile: {Data: defaultIgnore},
	}
)

type (
	// InitOptions contains options for project initialization
	InitOptions struct {
		// Databases lists the database names written to the scaffolded
		// configuration. If empty, the configured list is left untouched.
		Databases []string
	}

	Project struct {
		root   string
		config *config.Config
	}
)

// New creates a new Project instance for managing a SQL Server schema project.
// The path points at the project root; it is created on Initialize when it does
// not exist yet.
//
// Example:
//
//	// Create a new project handle
//	proj := project.New("/path/to/my/schema/project")
//
//	// Initialize the project structure and configuration
//	if err := proj.Initialize(project.InitOptions{}); err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Tracking %d database(s)\n", len(proj.Config().Databases))
func New(path string) *Project {
	return &Project{root: path}
}

// Initialize sets up the project directory and loads the configuration with
// the provided initialization options. This method is idempotent - it will
// only create missing files, preserving any existing content. It scaffolds
// schemakeeper.yaml and a starter .syncignore, then makes sure the configured
// schema repository directory exists.
//
// Example:
//
//	proj := project.New("/path/to/my/project")
//	options := project.InitOptions{Databases: []string{"app", "reporting"}}
//	if err := proj.Initialize(options); err != nil {
//		log.Fatal("Failed to initialize project:", err)
//	}
//
//	// Or with defaults:
//	if err := proj.Initialize(project.InitOptions{}); err != nil {
//		log.Fatal("Failed to initialize project:", err)
//	}
func (p *Project) Initialize(options InitOptions) error {
	if err := os.MkdirAll(p.root, consts.ModeDir); err != nil {
		return errors.Wrapf(err, "failed to create project directory %s", p.root)
	}

	// Walk the embedded FS and create missing files/directories
	for path, entry := range image {
		fullPath := filepath.Join(p.root, path)

		// Check if the entry already exists
		if _, err := os.Stat(fullPath); err == nil {
			// Entry exists, skip it
			continue
		} else if !os.IsNotExist(err) {
			// Some other error occurred
			return errors.Wrapf(err, "failed to stat %s", fullPath)
		}

		// Entry doesn't exist, create it
		if entry.Mode.IsDir() {
			if err := os.MkdirAll(fullPath, entry.Mode.Perm()); err != nil {
				return errors.Wrapf(err, "failed to create directory %s", fullPath)
			}

			continue
		}

		// Ensure parent directory exists
		parentDir := filepath.Dir(fullPath)
		if err := os.MkdirAll(parentDir, consts.ModeDir); err != nil {
			return errors.Wrapf(err, "failed to create parent directory %s", parentDir)
		}

		// Create file with embedded content
		if err := os.WriteFile(fullPath, entry.Data, consts.ModeFile); err != nil {
			return errors.Wrapf(err, "failed to write file %s", fullPath)
		}
	}

	cfg, err := config.LoadConfigFile(filepath.Join(p.root, consts.ConfigFile))
	if err != nil {
		return errors.Wrap(err, "failed to load schemakeeper.yaml")
	}

	// Apply custom options if provided
	if len(options.Databases) > 0 {
		cfg.Databases = options.Databases

		// Write the updated config back to the file
		configPath := filepath.Join(p.root, consts.ConfigFile)
		configFile, err := os.Create(configPath)
		if err != nil {
			return errors.Wrapf(err, "failed to open config file for writing: %s", configPath)
		}
		defer func() { _ = configFile.Close() }()

		encoder := yaml.NewEncoder(configFile)
		if err := encoder.Encode(cfg); err != nil {
			return errors.Wrap(err, "failed to write updated config")
		}
		if err := encoder.Close(); err != nil {
			return errors.Wrap(err, "failed to close yaml encoder")
		}
	}

	p.config = cfg

	// Create the schema repository directory if it doesn't exist
	repoPath := cfg.Repo.Path
	if !filepath.IsAbs(repoPath) {
		repoPath = filepath.Join(p.root, repoPath)
	}
	if err := os.MkdirAll(repoPath, consts.ModeDir); err != nil {
		return errors.Wrapf(err, "failed to create repository directory %s", repoPath)
	}

	return nil
}

// Root returns the project root directory.
func (p *Project) Root() string {
	return p.root
}

// Config returns the loaded project configuration, or nil before Initialize
// has run.
func (p *Project) Config() *config.Config {
	return p.config
}
