// Package cmd provides CLI commands for the schemakeeper tool.
//
// This package implements the command-line interface for schemakeeper,
// providing commands for project management, schema capture, and fleet
// rollouts. Commands operate on a project directory holding
// schemakeeper.yaml and the git-backed schema repository it points at.
//
// # Available Commands
//
// The cmd package currently provides:
//   - init: Initialize a new schemakeeper project structure
//   - bootstrap: Seed an empty schema repository from an existing database
//   - sync: Capture live database changes into the repository
//   - apply: Apply repository schema state to databases
//   - status: Show how databases relate to the repository
//   - dump: Print the canonical DDL of a database
//   - dev: Manage a local SQL Server development server
//
// # Command Structure
//
// Each command is implemented as a separate function that returns a
// *cli.Command, following the urfave/cli/v3 pattern. Command constructors
// receive their collaborators (configuration, ignore matcher) through fx
// and are registered under the "commands" group consumed by Run.
//
// # Global Options
//
// All commands support global flags:
//   - --dir, -d: Specify project directory (defaults to current directory)
//   - --help, -h: Display command help
//   - --version: Display version information
//
// # Example Usage
//
// Commands are registered in the main application and can be invoked
// from the command line:
//
//	schemakeeper init                     # Initialize project
//	schemakeeper bootstrap --db app       # Seed the repository from a database
//	schemakeeper sync                     # Capture drift from every configured database
//	schemakeeper apply --ref v2024.08     # Roll a tagged revision out to the fleet
//	schemakeeper status                   # Check for uncaptured changes
//	schemakeeper dev up                   # Start a local server with the repo schema loaded
//
// Each command provides help text and validation to ensure proper usage
// and clear error messages.
package cmd
