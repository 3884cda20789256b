// Package project provides SQL Server schema project management, covering
// project initialization and configuration scaffolding.
//
// # Project Management
//
// The project package enables structured management of SQL Server schemas
// through a standardized project layout and configuration system. It provides
// idempotent project initialization that creates the configuration files
// while preserving existing content.
//
// # Project Structure
//
// A schemakeeper project follows this standard layout:
//
//	project-root/
//	├── schemakeeper.yaml       # Server, repository, and database configuration
//	├── .syncignore             # Glob patterns excluded from synchronization
//	└── <repo path>/            # Git repository tracking the schemas
//	    ├── base/               # Shared schema tree
//	    └── diff/               # Per-database override trees
//
// The repository directory defaults to the project root itself and holds the
// base/ and diff/ trees once a database has been onboarded.
//
// # Usage Example
//
//	// Initialize a new project
//	proj := project.New("/path/to/my/project")
//	if err := proj.Initialize(project.InitOptions{}); err != nil {
//		log.Fatal("Failed to initialize project:", err)
//	}
//
//	// Seed the database list during initialization
//	opts := project.InitOptions{Databases: []string{"app", "reporting"}}
//	if err := proj.Initialize(opts); err != nil {
//		log.Fatal("Failed to initialize project:", err)
//	}
//
//	// Load configuration later
//	cfg, err := config.LoadConfigFile("schemakeeper.yaml")
//	if err != nil {
//		log.Fatal("Failed to load config:", err)
//	}
package project
