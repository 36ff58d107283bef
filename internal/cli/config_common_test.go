package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/lmsseed/internal/config"
	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

func TestLoadProjectConfig_Missing(t *testing.T) {
	cfg, err := loadProjectConfig(t.TempDir())
	if err != nil {
		t.Fatalf("missing lmsseed.yaml should not be an error, got %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
}

func TestLoadProjectConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte("connection: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := loadProjectConfig(dir)
	if !errors.Is(err, lmsseed.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestResolveEffectiveTimeout(t *testing.T) {
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{Use: "x"}
		cmd.Flags().Duration("timeout", time.Minute, "")
		return cmd
	}
	fromFile := &config.ProjectConfig{Timeout: "90s"}

	tests := []struct {
		name    string
		cfg     *config.ProjectConfig
		setFlag bool
		want    time.Duration
		wantErr bool
	}{
		{name: "no config uses flag", cfg: nil, want: time.Minute},
		{name: "config without timeout uses flag", cfg: &config.ProjectConfig{}, want: time.Minute},
		{name: "config overrides default flag", cfg: fromFile, want: 90 * time.Second},
		{name: "explicit flag overrides config", cfg: fromFile, setFlag: true, want: 5 * time.Minute},
		{name: "invalid config timeout", cfg: &config.ProjectConfig{Timeout: "soon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newCmd()
			flagValue := time.Minute
			if tt.setFlag {
				if err := cmd.Flags().Set("timeout", "5m"); err != nil {
					t.Fatal(err)
				}
				flagValue = 5 * time.Minute
			}

			got, err := resolveEffectiveTimeout(cmd, tt.cfg, flagValue)
			if tt.wantErr {
				if !errors.Is(err, lmsseed.ErrInvalidConfig) {
					t.Fatalf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveConnection_CloudFlagsExclusive(t *testing.T) {
	clearConnectionEnv(t)

	_, err := resolveConnection(connectionFlags{
		connection: "postgresql://app@db/lms",
		azure:      true,
		aws:        true,
	}, nil)
	if !errors.Is(err, lmsseed.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestResolveConnection_DatabaseOverridesConnectionString(t *testing.T) {
	clearConnectionEnv(t)

	cfg, err := resolveConnection(connectionFlags{
		connection: "postgresql://app@db.internal:6543/postgres",
		database:   "lms",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database != "lms" || cfg.Port != 6543 || cfg.Host != "db.internal" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.AuthMethod != lmsseed.AuthMethodStandard {
		t.Errorf("AuthMethod = %v, want Standard", cfg.AuthMethod)
	}
}

func TestResolveConnection_AWSFlag(t *testing.T) {
	clearConnectionEnv(t)

	cfg, err := resolveConnection(connectionFlags{
		host:      "lms.cluster.rds.amazonaws.com",
		username:  "loader",
		database:  "lms",
		aws:       true,
		awsRegion: "eu-west-1",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AuthMethod != lmsseed.AuthMethodAWSIAM || cfg.AWSRegion != "eu-west-1" {
		t.Errorf("unexpected auth: %v %q", cfg.AuthMethod, cfg.AWSRegion)
	}
}

// clearConnectionEnv blanks every variable the resolver reads.
func clearConnectionEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"LMSSEED_CONNECTION_STRING", "DATABASE_URL",
		"PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE", "PGSSLMODE",
		"AZURE_TENANT_ID", "AZURE_CLIENT_ID", "AZURE_CLIENT_SECRET", "AWS_REGION",
	} {
		t.Setenv(name, "")
	}
}
