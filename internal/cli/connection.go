package cli

import (
	"context"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/lmsseed/internal/config"
	"github.com/vvka-141/lmsseed/internal/db"
	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

// resolveConnection turns connection flags, the environment and lmsseed.yaml
// into a single ConnectionConfig.
func resolveConnection(flags connectionFlags, projectCfg *config.ProjectConfig) (*lmsseed.ConnectionConfig, error) {
	granular := &db.GranularConnFlags{
		Host:     flags.host,
		Port:     flags.port,
		Username: flags.username,
		Database: flags.database,
		SSLMode:  flags.sslMode,
	}

	cloud := &db.CloudFlags{
		Azure:          flags.azure,
		AzureTenantID:  flags.azureTenantID,
		AzureClientID:  flags.azureClientID,
		AWS:            flags.aws,
		AWSRegion:      flags.awsRegion,
		Google:         flags.google,
		GoogleInstance: flags.googleInstance,
	}

	return db.ResolveConnectionParams(flags.connection, granular, cloud, db.LoadFromEnvironment(), projectCfg)
}

// connect opens a pool for connConfig with the connector its auth method
// selects. The returned func closes the pool and any connector resources.
func connect(ctx context.Context, connConfig *lmsseed.ConnectionConfig, logger lmsseed.Logger) (*pgxpool.Pool, func(), error) {
	connector, err := db.NewConnector(connConfig, logger)
	if err != nil {
		return nil, nil, err
	}
	pool, err := connector.Connect(ctx)
	if err != nil {
		closeConnector(connector, logger)
		return nil, nil, err
	}
	return pool, func() {
		pool.Close()
		closeConnector(connector, logger)
	}, nil
}

func closeConnector(connector lmsseed.Connector, logger lmsseed.Logger) {
	if c, ok := connector.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Verbose("closing connector: %v", err)
		}
	}
}
