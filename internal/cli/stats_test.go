package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

func TestResolveStatsOutput_PipedIsJSON(t *testing.T) {
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	got := resolveStatsOutput(cmd, false)
	if !got.json {
		t.Error("non-terminal output should be JSON")
	}
	if got.printer.Styled {
		t.Error("non-terminal output should not be styled")
	}
	if got.printer.W != &out {
		t.Error("printer should write to the command output")
	}
}

func TestResolveStatsOutput_ForcedJSON(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	if got := resolveStatsOutput(cmd, true); !got.json {
		t.Error("--json should force JSON")
	}
}

func TestStatsCmd_Subcommands(t *testing.T) {
	want := map[string]bool{"users": false, "courses": false}
	for _, sub := range statsCmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("stats %s not registered", name)
		}
	}
}

func TestStatsCmd_InheritsConnectionFlags(t *testing.T) {
	for _, name := range []string{"connection", "host", "database", "json", "timeout"} {
		if statsUsersCmd.Flag(name) == nil {
			t.Errorf("stats users is missing --%s", name)
		}
	}
}

func TestRunStats_ConfigErrorBeforeConnecting(t *testing.T) {
	clearConnectionEnv(t)
	orig := statsFlags
	defer func() { statsFlags = orig }()
	statsFlags = statsFlagValues{conn: connectionFlags{host: "localhost"}}

	cmd := &cobra.Command{}
	cmd.Flags().Bool("verbose", false, "")
	cmd.Flags().Duration("timeout", 0, "")
	cmd.SetErr(&bytes.Buffer{})

	called := false
	err := runStats(cmd, func(_ context.Context, _ *pgxpool.Pool, _ statsOutput) error {
		called = true
		return nil
	})
	if !errors.Is(err, lmsseed.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if called {
		t.Error("report must not run without a connection")
	}
}
