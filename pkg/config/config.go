package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/consts"
	"github.com/pseudomuto/schemakeeper/pkg/ignore"
	"gopkg.in/yaml.v3"
)

type (
	// SQLServer represents connection settings for the server whose databases
	// are kept in sync with the schema repository.
	//
	// The password is never stored in the configuration file. PasswordEnv names
	// the environment variable it is read from at connect time.
	SQLServer struct {
		// Host specifies the server to connect to
		Host string `yaml:"host,omitempty"`

		// Port specifies the TCP port the server listens on
		Port int `yaml:"port,omitempty"`

		// User specifies the login used for all connections
		User string `yaml:"user,omitempty"`

		// PasswordEnv names the environment variable holding the password
		// for User
		PasswordEnv string `yaml:"password_env,omitempty"`

		// DefaultSchema is the schema treated as implicit in unqualified
		// object names when comparing definitions and scanning references
		DefaultSchema string `yaml:"default_schema,omitempty"`
	}

	// Repo represents settings for the git repository that tracks database
	// schemas.
	Repo struct {
		// Path specifies the repository working tree location
		// Relative paths resolve against the project directory
		Path string `yaml:"path,omitempty"`

		// Branch specifies the branch synchronization commits land on
		Branch string `yaml:"branch,omitempty"`

		// Remote specifies the remote pushed to after each commit
		Remote string `yaml:"remote,omitempty"`

		// DiffPrefix specifies the subdirectory of diff/ that holds the
		// per-database override trees
		DiffPrefix string `yaml:"diff_prefix,omitempty"`

		// AuthorName specifies the commit author recorded on
		// synchronization commits
		AuthorName string `yaml:"author_name,omitempty"`

		// AuthorEmail specifies the commit author email
		AuthorEmail string `yaml:"author_email,omitempty"`
	}

	// Config represents the project configuration for SQL Server schema
	// management.
	Config struct {
		// SQLServer contains the server connection settings
		SQLServer SQLServer `yaml:"sqlserver"`

		// Repo contains the schema repository settings
		Repo Repo `yaml:"repo"`

		// Databases lists the databases included when a command runs
		// without explicit targets
		Databases []string `yaml:"databases,omitempty"`

		// IgnoreFile specifies the file holding glob patterns excluded from
		// synchronization, relative to the project directory
		IgnoreFile string `yaml:"ignore_file,omitempty"`

		// Workers bounds how many databases are synchronized concurrently
		Workers int `yaml:"workers,omitempty"`
	}
)

// LoadConfig parses a project configuration from the provided io.Reader.
//
// The function expects YAML-formatted configuration data that defines the
// server connection and schema repository settings. It uses a streaming YAML
// decoder to handle configuration files efficiently. Unset values fall back
// to the package defaults, so a minimal file only carries the settings that
// differ from them.
//
// Parameters:
//   - r: An io.Reader containing YAML configuration data
//
// Returns:
//   - *Config: Successfully parsed configuration with defaults applied
//   - error: Any parsing errors encountered
//
// Example:
//
//	import (
//		"strings"
//		"github.com/pseudomuto/schemakeeper/pkg/config"
//	)
//
//	yamlData := `
//	sqlserver:
//	  host: db.internal
//	  user: schemakeeper
//	  password_env: SCHEMAKEEPER_PASSWORD
//	databases:
//	  - app
//	  - reporting
//	`
//
//	cfg, err := config.LoadConfig(strings.NewReader(yamlData))
//	if err != nil {
//		panic(err)
//	}
//
//	fmt.Printf("Server: %s:%d\n", cfg.SQLServer.Host, cfg.SQLServer.Port)
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal project config")
	}

	// Set default connection values if not specified
	if cfg.SQLServer.Host == "" {
		cfg.SQLServer.Host = consts.DefaultHost
	}
	if cfg.SQLServer.Port == 0 {
		cfg.SQLServer.Port = consts.DefaultPort
	}
	if cfg.SQLServer.User == "" {
		cfg.SQLServer.User = consts.DefaultUser
	}
	if cfg.SQLServer.PasswordEnv == "" {
		cfg.SQLServer.PasswordEnv = consts.DefaultPasswordEnv
	}
	if cfg.SQLServer.DefaultSchema == "" {
		cfg.SQLServer.DefaultSchema = consts.DefaultSchemaName
	}

	// Set default repository values if not specified
	if cfg.Repo.Path == "" {
		cfg.Repo.Path = "."
	}
	if cfg.Repo.Branch == "" {
		cfg.Repo.Branch = consts.DefaultBranch
	}
	if cfg.Repo.Remote == "" {
		cfg.Repo.Remote = consts.DefaultRemote
	}
	if cfg.Repo.DiffPrefix == "" {
		cfg.Repo.DiffPrefix = consts.DefaultDiffPrefix
	}
	if cfg.Repo.AuthorName == "" {
		cfg.Repo.AuthorName = consts.DefaultAuthorName
	}
	if cfg.Repo.AuthorEmail == "" {
		cfg.Repo.AuthorEmail = consts.DefaultAuthorEmail
	}

	if cfg.IgnoreFile == "" {
		cfg.IgnoreFile = consts.IgnoreFile
	}
	if cfg.Workers <= 0 {
		cfg.Workers = consts.DefaultWorkers
	}

	return &cfg, nil
}

// LoadConfigFile loads a project configuration from the specified file path.
// This is a convenience function that opens the file and calls LoadConfig.
//
// Example:
//
//	cfg, err := config.LoadConfigFile("schemakeeper.yaml")
//	if err != nil {
//		log.Fatal("Failed to load config:", err)
//	}
//
//	fmt.Printf("Branch: %s, Databases: %v\n", cfg.Repo.Branch, cfg.Databases)
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

// Password reads the configured password from the environment. An unset
// variable yields an empty password, which suits local trusted setups.
func (s SQLServer) Password() string {
	return os.Getenv(s.PasswordEnv)
}

// GetIgnoreMatcher loads the exclusion patterns referenced by the
// configuration. A nil configuration or a missing ignore file yields a
// matcher that processes everything.
func (c *Config) GetIgnoreMatcher() (*ignore.Matcher, error) {
	if c == nil {
		return &ignore.Matcher{}, nil
	}

	return ignore.LoadFile(c.IgnoreFile)
}
