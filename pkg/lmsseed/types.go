package lmsseed

import (
	"errors"
	"fmt"
	"time"
)

// ImportConfig contains all parameters needed for an import run.
type ImportConfig struct {
	// DataDir is the directory holding the five source files.
	DataDir string

	// ConnectionString is the PostgreSQL connection string (URI or ADO.NET format).
	// Ignored when DryRun is set.
	ConnectionString string

	// DryRun validates every source against an empty in-memory store instead of a database.
	DryRun bool

	// Timeout is the global timeout for the entire run.
	Timeout time.Duration

	// BcryptCost is the work factor used to hash user passwords. Zero selects the library default.
	BcryptCost int

	// Remap controls the comment user-id remap.
	Remap RemapConfig

	// Verbose enables detailed logging.
	Verbose bool

	// AuthMethod indicates the authentication mechanism to use.
	AuthMethod AuthMethod
}

// RemapConfig describes the comment user-id remap: ids strictly greater than
// Threshold are replaced by a uniform random id in [Min, Max].
type RemapConfig struct {
	Disabled  bool
	Threshold int64
	Min       int64
	Max       int64

	// Seed makes the random draw reproducible when non-zero.
	Seed uint64
}

// DefaultRemapConfig returns the remap used for demo data.
func DefaultRemapConfig() RemapConfig {
	return RemapConfig{
		Threshold: DefaultRemapThreshold,
		Min:       DefaultRemapMin,
		Max:       DefaultRemapMax,
	}
}

// Validate checks if the ImportConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *ImportConfig) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, fmt.Errorf("DataDir is required: %w", ErrInvalidConfig))
	}

	if !c.DryRun && c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	// bcrypt accepts costs 4..31
	if c.BcryptCost != 0 && (c.BcryptCost < 4 || c.BcryptCost > 31) {
		errs = append(errs, fmt.Errorf("bcrypt cost %d out of range [4, 31]: %w", c.BcryptCost, ErrInvalidConfig))
	}

	if err := c.Remap.Validate(); err != nil {
		errs = append(errs, err)
	}

	if !c.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %s: %w", c.AuthMethod, ErrUnsupportedAuthMethod))
	}

	return errors.Join(errs...)
}

// Validate reports an inverted or negative remap range. A disabled remap is always valid.
func (r RemapConfig) Validate() error {
	if r.Disabled {
		return nil
	}
	if r.Min < 0 || r.Max < r.Min {
		return fmt.Errorf("remap range [%d, %d] is invalid: %w", r.Min, r.Max, ErrInvalidConfig)
	}
	return nil
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used (env vars, managed identity, CLI, etc.)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is required for AuthMethodAWSIAM.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance)
	// used with AuthMethodGoogleIAM.
	GoogleInstance string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod maps the config-file spelling of an auth method to its value.
// An empty string selects AuthMethodStandard.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch s {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("%q: %w", s, ErrUnsupportedAuthMethod)
	}
}
