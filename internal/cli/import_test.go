package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/vvka-141/lmsseed/internal/config"
	"github.com/vvka-141/lmsseed/internal/logging"
	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

// newImportTestCmd returns an import command bound to freshly reset importFlags.
func newImportTestCmd(t *testing.T, flags map[string]string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	importFlags = importFlagValues{}
	t.Cleanup(func() { importFlags = importFlagValues{} })

	cmd := &cobra.Command{Use: "import [data_dir]", Args: OptionalDataDir, RunE: runImport}
	cmd.Flags().BoolP("verbose", "v", false, "")
	registerImportFlags(cmd, &importFlags)

	for name, value := range flags {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set --%s: %v", name, err)
		}
	}

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	return cmd, &out, &errOut
}

func writeDataDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestBuildImportConfig_DryRunDefaults(t *testing.T) {
	clearConnectionEnv(t)
	cmd, _, _ := newImportTestCmd(t, map[string]string{"dry-run": "true"})

	cfg, connConfig, err := buildImportConfig(cmd, nil, logging.NewNullLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if connConfig != nil {
		t.Errorf("dry run should not resolve a connection, got %+v", connConfig)
	}
	if cfg.DataDir != lmsseed.DefaultDataDir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, lmsseed.DefaultDataDir)
	}
	if cfg.Timeout != lmsseed.DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, lmsseed.DefaultTimeout)
	}
	if cfg.Remap != lmsseed.DefaultRemapConfig() {
		t.Errorf("Remap = %+v, want defaults", cfg.Remap)
	}
}

func TestBuildImportConfig_RequiresDatabase(t *testing.T) {
	clearConnectionEnv(t)
	cmd, _, _ := newImportTestCmd(t, map[string]string{"host": "localhost"})

	_, _, err := buildImportConfig(cmd, []string{t.TempDir()}, logging.NewNullLogger())
	if !errors.Is(err, lmsseed.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if code := lmsseed.ExitCodeForError(err); code != lmsseed.ExitConfigError {
		t.Errorf("exit code = %d, want %d", code, lmsseed.ExitConfigError)
	}
}

func TestBuildImportConfig_ConnectionString(t *testing.T) {
	clearConnectionEnv(t)
	cmd, _, _ := newImportTestCmd(t, map[string]string{
		"connection": "postgresql://loader@db.internal:6543/lms",
	})

	cfg, connConfig, err := buildImportConfig(cmd, []string{"./data"}, logging.NewNullLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataDir != "./data" {
		t.Errorf("DataDir = %q, want ./data", cfg.DataDir)
	}
	if cfg.ConnectionString == "" {
		t.Error("ConnectionString should be set")
	}
	if connConfig.Database != "lms" || connConfig.Port != 6543 {
		t.Errorf("unexpected connection: %+v", connConfig)
	}
}

func TestBuildImportConfig_InvalidBcryptCost(t *testing.T) {
	clearConnectionEnv(t)
	cmd, _, _ := newImportTestCmd(t, map[string]string{"dry-run": "true", "bcrypt-cost": "2"})

	_, _, err := buildImportConfig(cmd, nil, logging.NewNullLogger())
	if !errors.Is(err, lmsseed.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuildImportConfig_InvertedRemapRange(t *testing.T) {
	clearConnectionEnv(t)
	cmd, _, _ := newImportTestCmd(t, map[string]string{"dry-run": "true", "remap-min": "30", "remap-max": "10"})

	_, _, err := buildImportConfig(cmd, nil, logging.NewNullLogger())
	if !errors.Is(err, lmsseed.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestResolveRemap(t *testing.T) {
	threshold := int64(100)
	fromFile := &config.ProjectConfig{Remap: config.RemapConfig{Threshold: &threshold}}

	t.Run("config overrides defaults", func(t *testing.T) {
		cmd, _, _ := newImportTestCmd(t, nil)
		got := resolveRemap(cmd, fromFile)
		if got.Threshold != 100 || got.Min != lmsseed.DefaultRemapMin || got.Max != lmsseed.DefaultRemapMax {
			t.Errorf("unexpected remap: %+v", got)
		}
	})

	t.Run("flags override config", func(t *testing.T) {
		cmd, _, _ := newImportTestCmd(t, map[string]string{"remap-threshold": "70", "remap-max": "60", "seed": "9"})
		got := resolveRemap(cmd, fromFile)
		if got.Threshold != 70 || got.Max != 60 || got.Seed != 9 {
			t.Errorf("unexpected remap: %+v", got)
		}
	})

	t.Run("no-remap disables", func(t *testing.T) {
		cmd, _, _ := newImportTestCmd(t, map[string]string{"no-remap": "true"})
		if got := resolveRemap(cmd, nil); !got.Disabled {
			t.Errorf("expected remap disabled, got %+v", got)
		}
	})
}

func TestResolveDataDir(t *testing.T) {
	withDir := &config.ProjectConfig{DataDir: "/srv/lms"}

	if got := resolveDataDir([]string{"./x"}, withDir); got != "./x" {
		t.Errorf("argument should win, got %q", got)
	}
	if got := resolveDataDir(nil, withDir); got != "/srv/lms" {
		t.Errorf("config should win over default, got %q", got)
	}
	if got := resolveDataDir(nil, &config.ProjectConfig{}); got != lmsseed.DefaultDataDir {
		t.Errorf("expected default, got %q", got)
	}
}

func TestRunImport_DryRun(t *testing.T) {
	clearConnectionEnv(t)
	dir := writeDataDir(t, map[string]string{
		lmsseed.UsersFile:    "username,password,email,firstname,lastname\nalice,pw,alice@example.com,Alice,A\nbob,,bob@example.com,Bob,B\n",
		lmsseed.CoursesFile:  "name,description,price,teacher\nGo 101,Basics,100,1\n",
		lmsseed.MembersFile:  "course_id,user_id,roles\n1,2,std\n",
		lmsseed.ContentsFile: `[{"course_id": 1, "name": "Intro"}]`,
		lmsseed.CommentsFile: `[{"content_id": 1, "user_id": 2, "comment": "hi"}]`,
	})
	cmd, out, errOut := newImportTestCmd(t, map[string]string{
		"dry-run": "true", "json": "true", "no-remap": "true", "bcrypt-cost": "4",
	})

	if err := cmd.RunE(cmd, []string{dir}); err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, errOut.String())
	}

	var report struct {
		DataDir string `json:"data_dir"`
		Passes  []struct {
			Pass    string `json:"pass"`
			Created int    `json:"created"`
		} `json:"passes"`
	}
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("report is not JSON: %v\n%s", err, out.String())
	}
	if report.DataDir != dir {
		t.Errorf("data_dir = %q, want %q", report.DataDir, dir)
	}

	want := []int{2, 1, 1, 1, 1}
	if len(report.Passes) != len(want) {
		t.Fatalf("expected %d passes, got %d", len(want), len(report.Passes))
	}
	for i, p := range report.Passes {
		if p.Created != want[i] {
			t.Errorf("%s: created %d, want %d", p.Pass, p.Created, want[i])
		}
	}

	if !strings.Contains(errOut.String(), "Data import finished.") {
		t.Errorf("expected completion banner on stderr, got:\n%s", errOut.String())
	}
}

func TestRunImport_MalformedSourceExitCode(t *testing.T) {
	clearConnectionEnv(t)
	dir := writeDataDir(t, map[string]string{
		lmsseed.ContentsFile: `{"not": "an array"}`,
	})
	cmd, _, _ := newImportTestCmd(t, map[string]string{"dry-run": "true"})

	err := cmd.RunE(cmd, []string{dir})
	if !errors.Is(err, lmsseed.ErrImportIncomplete) {
		t.Fatalf("expected ErrImportIncomplete, got %v", err)
	}
	if code := lmsseed.ExitCodeForError(err); code != lmsseed.ExitImportIncomplete {
		t.Errorf("exit code = %d, want %d", code, lmsseed.ExitImportIncomplete)
	}
}

func TestRunImport_OnlyMissingSources(t *testing.T) {
	clearConnectionEnv(t)
	cmd, _, errOut := newImportTestCmd(t, map[string]string{"dry-run": "true"})

	if err := cmd.RunE(cmd, []string{t.TempDir()}); err != nil {
		t.Fatalf("missing sources are informational, got %v", err)
	}
	if !strings.Contains(errOut.String(), "comments.json not found") {
		t.Errorf("expected missing-source message, got:\n%s", errOut.String())
	}
}

func TestRunImport_MissingDataDir(t *testing.T) {
	clearConnectionEnv(t)
	cmd, _, _ := newImportTestCmd(t, map[string]string{"dry-run": "true"})

	err := cmd.RunE(cmd, []string{filepath.Join(t.TempDir(), "nope")})
	if !errors.Is(err, lmsseed.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
