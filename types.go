package userload

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
)

const (
	// DefaultTable is the table the loader persists users into.
	DefaultTable = "data_table"
	// DefaultAdminDatabase is the database used for side connections.
	DefaultAdminDatabase = "postgres"
	// DefaultDatabasePrefix names the fallback databases default_db0, default_db1, ...
	DefaultDatabasePrefix = "default_db"
)

// Credentials identify one database on a PostgreSQL server.
type Credentials struct {
	Host          string `mapstructure:"host" yaml:"host" validate:"required"`
	Port          int    `mapstructure:"port" yaml:"port" validate:"required,min=1,max=65535"`
	User          string `mapstructure:"user" yaml:"user" validate:"required"`
	Password      string `mapstructure:"password" yaml:"password"`
	Database      string `mapstructure:"database" yaml:"database" validate:"omitempty,identifier"`
	AdminDatabase string `mapstructure:"admin_database" yaml:"admin_database" validate:"omitempty,identifier"`
	SSLMode       string `mapstructure:"sslmode" yaml:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
}

// WithDatabase returns a copy of c pointed at another database on the same server.
func (c Credentials) WithDatabase(name string) Credentials {
	c.Database = name
	return c
}

// Admin returns a copy of c pointed at the administrative database.
func (c Credentials) Admin() Credentials {
	admin := c.AdminDatabase
	if admin == "" {
		admin = DefaultAdminDatabase
	}
	return c.WithDatabase(admin)
}

// DSN renders c as a postgres:// connection URL.
func (c Credentials) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else if c.User != "" {
		u.User = url.User(c.User)
	}

	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u.RawQuery = url.Values{"sslmode": {sslmode}}.Encode()

	return u.String()
}

// Validate checks the fields needed to open a connection. Unlike the struct
// tags alone, it also requires a database name.
func (c Credentials) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate credentials: %w", err)
	}
	if err := validate.Var(c.Database, "required"); err != nil {
		return fmt.Errorf("validate credentials: database: %w", err)
	}
	return nil
}

var validIdentifierRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidIdentifier checks if a database or table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name) && len(name) <= 63
}

// DefaultDatabaseName returns the i-th fallback database name.
func DefaultDatabaseName(i int) string {
	return DefaultDatabasePrefix + strconv.Itoa(i)
}
