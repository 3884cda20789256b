package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)
)

const (
	// ConfigFile is the name of the project configuration file.
	ConfigFile = "schemakeeper.yaml"

	// IgnoreFile is the default name of the ignore pattern file.
	IgnoreFile = ".syncignore"

	// DirBase is the repository directory holding the shared schema tree.
	DirBase = "base"

	// DirDiff is the repository directory holding per-database overrides.
	DirDiff = "diff"

	// SQLExt is the file extension for schema object definitions.
	SQLExt = ".sql"

	// DefaultBranch is the branch used when none is configured.
	DefaultBranch = "main"

	// DefaultRemote is the git remote used when none is configured.
	DefaultRemote = "origin"

	// DefaultAuthorName is the commit author used when none is configured.
	DefaultAuthorName = "schemakeeper"

	// DefaultAuthorEmail is the commit author email used when none is configured.
	DefaultAuthorEmail = "schemakeeper@localhost"

	// DefaultDiffPrefix is the subdirectory of DirDiff used when none is configured.
	DefaultDiffPrefix = "overrides"

	// DefaultSchemaName is the schema objects belong to unless qualified otherwise.
	DefaultSchemaName = "dbo"

	// DefaultHost is the SQL Server host used when none is configured.
	DefaultHost = "localhost"

	// DefaultPort is the SQL Server TCP port.
	DefaultPort = 1433

	// DefaultUser is the SQL Server login used when none is configured.
	DefaultUser = "sa"

	// DefaultPasswordEnv is the environment variable read for the SQL Server
	// password when none is configured.
	DefaultPasswordEnv = "MSSQL_PASSWORD"

	// DefaultWorkers bounds concurrent per-database sync work.
	DefaultWorkers = 8
)
