package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/lmsseed/internal/retry"
	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns bounds the pool. Passes run sequentially, so a handful is plenty.
	DefaultMaxConns = 4

	// DefaultMinConns maintains at least one connection in the pool.
	DefaultMinConns = 1

	// DefaultMaxConnIdleTime keeps the connection alive across slow passes.
	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config, logger lmsseed.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("postgres %s: %s", strings.ToLower(notice.Severity), notice.Message)
	}
}

// newRetryExecutor builds the executor shared by all connectors. Only
// connection setup is retried.
func newRetryExecutor(logger lmsseed.Logger) *retry.Executor {
	strategy := retry.NewExponentialBackoff(lmsseed.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(lmsseed.DefaultRetryInitialDelay),
		retry.WithMaxDelay(lmsseed.DefaultRetryMaxDelay),
	)
	return retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Verbose("connection attempt %d failed: %v (retrying in %s)", attempt, err, delay.Round(time.Millisecond))
		})
}

// openPool parses connStr, opens a pool and pings it.
func openPool(ctx context.Context, connStr string, config *lmsseed.ConnectionConfig, logger lmsseed.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}
	configurePool(poolConfig, logger)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}
	return pool, nil
}

// StandardConnector connects with username/password authentication and
// retries transient failures.
type StandardConnector struct {
	config   *lmsseed.ConnectionConfig
	logger   lmsseed.Logger
	executor *retry.Executor
}

// NewStandardConnector creates a StandardConnector. Retry uses the lmsseed
// defaults: DefaultRetryMaxAttempts attempts with exponential backoff.
func NewStandardConnector(config *lmsseed.ConnectionConfig, logger lmsseed.Logger) *StandardConnector {
	return &StandardConnector{
		config:   config,
		logger:   logger,
		executor: newRetryExecutor(logger),
	}
}

func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	connStr := BuildConnectionString(c.config)

	err := c.executor.Do(ctx, func(ctx context.Context) error {
		var err error
		pool, err = openPool(ctx, connStr, c.config, c.logger)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lmsseed.ErrConnectionFailed, err)
	}
	return pool, nil
}

// TokenConnector connects to cloud-hosted PostgreSQL that accepts a
// short-lived token as the password (AWS IAM, Azure Entra ID). A fresh token
// is requested for every attempt.
type TokenConnector struct {
	config   *lmsseed.ConnectionConfig
	tokens   TokenProvider
	logger   lmsseed.Logger
	executor *retry.Executor
}

// NewTokenConnector creates a TokenConnector drawing passwords from tokens.
func NewTokenConnector(config *lmsseed.ConnectionConfig, tokens TokenProvider, logger lmsseed.Logger) *TokenConnector {
	return &TokenConnector{
		config:   config,
		tokens:   tokens,
		logger:   logger,
		executor: newRetryExecutor(logger),
	}
}

func (c *TokenConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	c.logger.Verbose("Authenticating with %s", c.tokens)

	err := c.executor.Do(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokens.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire token from %s: %w", c.tokens, err)
		}
		if remaining := time.Until(expiresOn); remaining < 5*time.Minute {
			c.logger.Info("Warning: database token expires in %v", remaining.Round(time.Second))
		}

		withToken := *c.config
		withToken.Password = token
		pool, err = openPool(ctx, BuildConnectionString(&withToken), c.config, c.logger)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lmsseed.ErrConnectionFailed, err)
	}
	return pool, nil
}

// NewConnector returns the Connector matching config.AuthMethod.
func NewConnector(config *lmsseed.ConnectionConfig, logger lmsseed.Logger) (lmsseed.Connector, error) {
	switch config.AuthMethod {
	case lmsseed.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case lmsseed.AuthMethodAWSIAM:
		tokens, err := NewAWSIAMTokenProvider(fmt.Sprintf("%s:%d", config.Host, config.Port), config.AWSRegion, config.Username)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", lmsseed.ErrInvalidConfig, err)
		}
		return NewTokenConnector(config, tokens, logger), nil
	case lmsseed.AuthMethodAzureEntraID:
		tokens, err := newAzureTokenProvider(config)
		if err != nil {
			return nil, err
		}
		return NewTokenConnector(config, tokens, logger), nil
	case lmsseed.AuthMethodGoogleIAM:
		if config.GoogleInstance == "" {
			return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", lmsseed.ErrInvalidConfig)
		}
		if config.Username == "" {
			return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", lmsseed.ErrInvalidConfig)
		}
		return NewGoogleCloudSQLConnector(config, logger), nil
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, lmsseed.ErrUnsupportedAuthMethod)
	}
}

// newAzureTokenProvider uses Service Principal credentials when all three are
// set, otherwise the DefaultAzureCredential chain.
func newAzureTokenProvider(config *lmsseed.ConnectionConfig) (TokenProvider, error) {
	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		p, err := NewAzureServicePrincipalProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
		return p, nil
	}
	p, err := NewAzureDefaultCredentialProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
	}
	return p, nil
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port

Original error: %w`, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable

Original error: %w`, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD, .env or ~/.pgpass)
  - Wrong username

Original error: %w`, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

To create it with the LMS schema:
  lmsseed schema apply --create-database -d %s

Original error: %w`, database, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets

Original error: %w`, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (try --sslmode=require)

Original error: %w`, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}
