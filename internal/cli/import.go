package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/lmsseed/internal/config"
	"github.com/vvka-141/lmsseed/internal/db"
	"github.com/vvka-141/lmsseed/internal/files/filesystem"
	"github.com/vvka-141/lmsseed/internal/importer"
	"github.com/vvka-141/lmsseed/internal/logging"
	"github.com/vvka-141/lmsseed/internal/store"
	"github.com/vvka-141/lmsseed/internal/tui"
	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

var importCmd = &cobra.Command{
	Use:   "import [data_dir]",
	Short: "Load the source files into the database",
	Long: `Import loads the LMS source files from data_dir in five passes:

  1. user-data.csv     users
  2. course-data.csv   courses (teacher must be an existing user)
  3. member-data.csv   enrollments (course and user must exist)
  4. contents.json     course content (course must exist)
  5. comments.json     comments (author must be enrolled in the content's course)

A missing file skips its pass. Any other pass failure is reported and the
remaining passes still run; the command then exits with code 15.

Arguments:
  data_dir    Directory holding the source files
              (default: data_dir from lmsseed.yaml, else ./csv_data)

Examples:
  # Import into the lms database
  lmsseed import ./csv_data -d lms

  # Validate the sources without touching a database
  lmsseed import ./csv_data --dry-run

  # Reproducible comment author remap, machine-readable report
  lmsseed import --seed 42 --json > report.json`,
	Args:              OptionalDataDir,
	ValidArgsFunction: completeDirectories,
	RunE:              runImport,
}

type importFlagValues struct {
	conn           connectionFlags
	dryRun         bool
	timeout        time.Duration
	bcryptCost     int
	noRemap        bool
	remapThreshold int64
	remapMin       int64
	remapMax       int64
	seed           uint64
	json           bool
}

var importFlags importFlagValues

func init() {
	rootCmd.AddCommand(importCmd)
	registerImportFlags(importCmd, &importFlags)
}

func registerImportFlags(cmd *cobra.Command, f *importFlagValues) {
	addConnectionFlags(cmd, &f.conn, false)

	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false,
		"Validate the sources against an empty in-memory store; no database is used")
	cmd.Flags().DurationVar(&f.timeout, "timeout", lmsseed.DefaultTimeout,
		"Upper bound for the whole run\n"+
			"Examples: 30s, 5m, 1h30m")
	cmd.Flags().IntVar(&f.bcryptCost, "bcrypt-cost", 0,
		"bcrypt work factor for user passwords, 4..31 (default: library default)")
	cmd.Flags().BoolVar(&f.noRemap, "no-remap", false,
		"Keep comment user ids as they appear in comments.json")
	cmd.Flags().Int64Var(&f.remapThreshold, "remap-threshold", lmsseed.DefaultRemapThreshold,
		"Comment user ids above this value are remapped")
	cmd.Flags().Int64Var(&f.remapMin, "remap-min", lmsseed.DefaultRemapMin,
		"Lowest id a remapped comment user id can take")
	cmd.Flags().Int64Var(&f.remapMax, "remap-max", lmsseed.DefaultRemapMax,
		"Highest id a remapped comment user id can take")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0,
		"Seed for the comment user id remap; 0 draws a fresh sequence")
	cmd.Flags().BoolVar(&f.json, "json", false,
		"Write the import report as JSON to stdout")
}

// buildImportConfig builds an ImportConfig from CLI flags, lmsseed.yaml and
// the environment. Flags override the file; the file overrides defaults.
// The connection config is nil for a dry run.
func buildImportConfig(cmd *cobra.Command, args []string, logger lmsseed.Logger) (lmsseed.ImportConfig, *lmsseed.ConnectionConfig, error) {
	projectCfg, err := loadProjectConfig(".")
	if err != nil {
		return lmsseed.ImportConfig{}, nil, err
	}

	cfg := lmsseed.ImportConfig{
		DataDir: resolveDataDir(args, projectCfg),
		DryRun:  importFlags.dryRun,
		Verbose: getVerboseFlag(cmd),
	}

	cfg.Timeout, err = resolveEffectiveTimeout(cmd, projectCfg, importFlags.timeout)
	if err != nil {
		return lmsseed.ImportConfig{}, nil, err
	}

	cfg.BcryptCost = importFlags.bcryptCost
	if projectCfg != nil && !cmd.Flags().Changed("bcrypt-cost") {
		cfg.BcryptCost = projectCfg.BcryptCost
	}

	cfg.Remap = resolveRemap(cmd, projectCfg)

	var connConfig *lmsseed.ConnectionConfig
	if !cfg.DryRun {
		connConfig, err = resolveConnection(importFlags.conn, projectCfg)
		if err != nil {
			return lmsseed.ImportConfig{}, nil, err
		}
		logConnectionVerbose(logger, connConfig)
		cfg.ConnectionString = db.BuildConnectionString(connConfig)
		cfg.AuthMethod = connConfig.AuthMethod
	}

	if err := cfg.Validate(); err != nil {
		return lmsseed.ImportConfig{}, nil, err
	}
	return cfg, connConfig, nil
}

func resolveDataDir(args []string, projectCfg *config.ProjectConfig) string {
	if len(args) > 0 {
		return args[0]
	}
	if projectCfg != nil && projectCfg.DataDir != "" {
		return projectCfg.DataDir
	}
	return lmsseed.DefaultDataDir
}

func resolveRemap(cmd *cobra.Command, projectCfg *config.ProjectConfig) lmsseed.RemapConfig {
	remap := lmsseed.DefaultRemapConfig()
	if projectCfg != nil {
		remap = projectCfg.Remap.Apply(remap)
	}

	flags := cmd.Flags()
	if flags.Changed("remap-threshold") {
		remap.Threshold = importFlags.remapThreshold
	}
	if flags.Changed("remap-min") {
		remap.Min = importFlags.remapMin
	}
	if flags.Changed("remap-max") {
		remap.Max = importFlags.remapMax
	}
	if importFlags.noRemap {
		remap.Disabled = true
	}
	remap.Seed = importFlags.seed
	return remap
}

func runImport(cmd *cobra.Command, args []string) error {
	errOut := cmd.ErrOrStderr()
	logger := logging.NewWriterLogger(errOut, getVerboseFlag(cmd), tui.ColorEnabled(errOut))

	cfg, connConfig, err := buildImportConfig(cmd, args, logger)
	if err != nil {
		return err
	}

	fsys := filesystem.NewOSFileSystem()
	info, err := fsys.Stat(cfg.DataDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("data directory %s does not exist or is not a directory: %w", cfg.DataDir, lmsseed.ErrInvalidConfig)
	}

	ctx, cancel := newCommandContext(cfg.Timeout, errOut, "import")
	defer cancel()

	var st lmsseed.Store
	if cfg.DryRun {
		logger.Info("Dry run: validating %s against an empty in-memory store", cfg.DataDir)
		st = store.NewMemory()
	} else {
		pool, closePool, err := connect(ctx, connConfig, logger)
		if err != nil {
			return err
		}
		defer closePool()
		st = store.NewPostgres(pool)
	}

	im := importer.New(st, fsys, logger,
		importer.WithHasher(importer.NewBcryptHasher(cfg.BcryptCost)),
		importer.WithRemap(importer.NewThresholdRemap(cfg.Remap)),
	)

	report, runErr := im.Run(ctx, cfg.DataDir)
	if importFlags.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return runErr
}
