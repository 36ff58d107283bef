package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/lmsseed/internal/config"
	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Password is deliberately not a flag. Use $PGPASSWORD, a .env file or a
// connection string instead.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty reports whether no server-addressing flag was given. Database is
// excluded because it may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags selects a cloud authentication method from the CLI.
// The Azure client secret only comes from $AZURE_CLIENT_SECRET.
type CloudFlags struct {
	Azure         bool
	AzureTenantID string
	AzureClientID string

	AWS       bool
	AWSRegion string

	Google         bool
	GoogleInstance string
}

func (c *CloudFlags) selected() int {
	n := 0
	for _, on := range []bool{c.Azure, c.AWS, c.Google} {
		if on {
			n++
		}
	}
	return n
}

// EnvVars holds the environment consulted during resolution.
// See https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	LMSSEED_CONNECTION_STRING string
	DATABASE_URL              string

	PGHOST     string
	PGPORT     string
	PGUSER     string
	PGPASSWORD string
	PGDATABASE string
	PGSSLMODE  string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string

	AWS_REGION string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		LMSSEED_CONNECTION_STRING: os.Getenv("LMSSEED_CONNECTION_STRING"),
		DATABASE_URL:              os.Getenv("DATABASE_URL"),
		PGHOST:                    os.Getenv("PGHOST"),
		PGPORT:                    os.Getenv("PGPORT"),
		PGUSER:                    os.Getenv("PGUSER"),
		PGPASSWORD:                os.Getenv("PGPASSWORD"),
		PGDATABASE:                os.Getenv("PGDATABASE"),
		PGSSLMODE:                 os.Getenv("PGSSLMODE"),
		AZURE_TENANT_ID:           os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:           os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:       os.Getenv("AZURE_CLIENT_SECRET"),
		AWS_REGION:                os.Getenv("AWS_REGION"),
	}
}

// connectionString returns the first connection string from the environment.
func (e *EnvVars) connectionString() string {
	if e.LMSSEED_CONNECTION_STRING != "" {
		return e.LMSSEED_CONNECTION_STRING
	}
	return e.DATABASE_URL
}

// ResolveConnectionParams resolves connection parameters with this precedence:
//
//  1. --connection flag
//  2. $LMSSEED_CONNECTION_STRING, then $DATABASE_URL, unless granular flags are given
//  3. granular flags, then PG* variables, then lmsseed.yaml, then defaults
//
// -d/--database overrides the database of a connection string. The auth
// method comes from cloud flags, then lmsseed.yaml, then Azure variables.
func ResolveConnectionParams(
	connStringFlag string,
	granular *GranularConnFlags,
	cloud *CloudFlags,
	env *EnvVars,
	projectConfig *config.ProjectConfig,
) (*lmsseed.ConnectionConfig, error) {
	if granular == nil {
		granular = &GranularConnFlags{}
	}
	if cloud == nil {
		cloud = &CloudFlags{}
	}
	if env == nil {
		env = &EnvVars{}
	}
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	if connStringFlag != "" && !granular.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/lms\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U myuser -d lms\n"+
				"  3. Environment variables: export PGHOST=localhost PGDATABASE=lms: %w",
			lmsseed.ErrInvalidConfig,
		)
	}
	if cloud.selected() > 1 {
		return nil, fmt.Errorf("--azure, --aws and --google are mutually exclusive: %w", lmsseed.ErrInvalidConfig)
	}

	connStr := connStringFlag
	if connStr == "" && granular.IsEmpty() {
		connStr = env.connectionString()
	}

	var cfg *lmsseed.ConnectionConfig
	var err error
	if connStr != "" {
		cfg, err = ParseConnectionString(connStr)
		if err != nil {
			return nil, fmt.Errorf("invalid connection string: %v: %w", err, lmsseed.ErrInvalidConfig)
		}
		if granular.Database != "" {
			cfg.Database = granular.Database
		}
	} else {
		cfg, err = resolveFromGranularParams(granular, env, pc)
		if err != nil {
			return nil, err
		}
	}

	if cfg.SSLMode == "" {
		cfg.SSLMode = firstNonEmpty(env.PGSSLMODE, pc.SSLMode, "prefer")
	}

	if err := applyAuth(cfg, cloud, env, pc); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MaintenanceConfig returns a copy of cfg pointed at the management database,
// for CREATE DATABASE and similar server-level statements.
func MaintenanceConfig(cfg *lmsseed.ConnectionConfig) *lmsseed.ConnectionConfig {
	maint := *cfg
	maint.Database = lmsseed.DefaultManagementDB
	return &maint
}

func applyAuth(cfg *lmsseed.ConnectionConfig, cloud *CloudFlags, env *EnvVars, pc config.ConnectionConfig) error {
	method, err := lmsseed.ParseAuthMethod(pc.AuthMethod)
	if err != nil {
		return fmt.Errorf("lmsseed.yaml auth_method: %w", err)
	}

	tenantID := firstNonEmpty(cloud.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
	clientID := firstNonEmpty(cloud.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)

	switch {
	case cloud.Azure:
		method = lmsseed.AuthMethodAzureEntraID
	case cloud.AWS:
		method = lmsseed.AuthMethodAWSIAM
	case cloud.Google:
		method = lmsseed.AuthMethodGoogleIAM
	case method == lmsseed.AuthMethodStandard && (tenantID != "" || clientID != ""):
		method = lmsseed.AuthMethodAzureEntraID
	}

	cfg.AuthMethod = method
	switch method {
	case lmsseed.AuthMethodAzureEntraID:
		cfg.AzureTenantID = tenantID
		cfg.AzureClientID = clientID
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	case lmsseed.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(cloud.AWSRegion, env.AWS_REGION, pc.AWSRegion)
	case lmsseed.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(cloud.GoogleInstance, pc.GoogleInstance)
	}
	return nil
}

// resolveFromGranularParams applies flag > environment > lmsseed.yaml > default
// to each parameter.
func resolveFromGranularParams(flags *GranularConnFlags, env *EnvVars, pc config.ConnectionConfig) (*lmsseed.ConnectionConfig, error) {
	cfg := &lmsseed.ConnectionConfig{
		Host:             firstNonEmpty(flags.Host, env.PGHOST, pc.Host, "localhost"),
		Username:         firstNonEmpty(flags.Username, env.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME")),
		Password:         env.PGPASSWORD,
		Database:         firstNonEmpty(flags.Database, env.PGDATABASE, pc.Database),
		SSLMode:          flags.SSLMode,
		AuthMethod:       lmsseed.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case env.PGPORT != "":
		port, err := strconv.Atoi(env.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", env.PGPORT, lmsseed.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = 5432
	}

	if cfg.Database == "" {
		return nil, fmt.Errorf("database name is required\n"+
			"Provide via:\n"+
			"  1. --database flag: lmsseed import ./csv_data --database lms\n"+
			"  2. Connection string: --connection \"postgresql://user@host/lms\"\n"+
			"  3. Environment variable: export PGDATABASE=lms\n"+
			"  4. lmsseed.yaml: connection.database: %w", lmsseed.ErrInvalidConfig)
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
