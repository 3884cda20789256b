package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	// Registers the "sqlserver" driver.
	_ "github.com/denisenkom/go-mssqldb"
	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/consts"
	"github.com/pseudomuto/schemakeeper/pkg/utils"
)

type (
	// Config holds the connection settings for a SQL Server instance. An
	// empty Port falls back to 1433 and an empty DefaultSchema to dbo.
	Config struct {
		Host          string
		Port          int
		User          string
		Password      string
		Database      string
		DefaultSchema string
	}

	// Client is a connection to one SQL Server database.
	Client struct {
		db            *sql.DB
		database      string
		defaultSchema string
	}
)

// DSN renders the sqlserver connection URL for the configuration.
//
// Example:
//
//	Config{Host: "db", Port: 1433, User: "sa", Password: "pw", Database: "app"}.DSN()
//	// sqlserver://sa:pw@db:1433?database=app
func (c Config) DSN() string {
	port := c.Port
	if port == 0 {
		port = consts.DefaultPort
	}

	query := url.Values{}
	if c.Database != "" {
		query.Add("database", c.Database)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, port),
		RawQuery: query.Encode(),
	}
	return u.String()
}

// New opens a client for the configured database and verifies the
// connection with a ping.
func New(ctx context.Context, config Config) (*Client, error) {
	if config.DefaultSchema == "" {
		config.DefaultSchema = consts.DefaultSchemaName
	}

	db, err := sql.Open("sqlserver", config.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sql server connection")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to reach %s", config.Host)
	}

	return &Client{
		db:            db,
		database:      config.Database,
		defaultSchema: config.DefaultSchema,
	}, nil
}

// Database returns the name of the database this client is bound to.
func (c *Client) Database() string {
	return c.database
}

// DefaultSchema returns the schema treated as implicit in rendered DDL.
func (c *Client) DefaultSchema() string {
	return c.defaultSchema
}

// Ping verifies the connection is still usable.
func (c *Client) Ping(ctx context.Context) error {
	return errors.Wrapf(c.db.PingContext(ctx), "failed to reach database %s", c.database)
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// EnsureDatabase creates the named database when it does not exist yet. The
// client must be connected with a login allowed to create databases.
func (c *Client) EnsureDatabase(ctx context.Context, name string) error {
	stmt := fmt.Sprintf(
		"IF DB_ID(N'%s') IS NULL CREATE DATABASE %s",
		strings.ReplaceAll(name, "'", "''"), utils.BracketIdentifier(name),
	)

	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrapf(err, "failed to create database %s", name)
	}

	return nil
}
