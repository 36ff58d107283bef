package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/lmsseed/internal/db"
	"github.com/vvka-141/lmsseed/internal/db/manager"
	"github.com/vvka-141/lmsseed/internal/logging"
	"github.com/vvka-141/lmsseed/internal/schema"
	"github.com/vvka-141/lmsseed/internal/tui"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the LMS database schema",
}

var schemaApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create the LMS tables",
	Long: `Apply creates the users, courses, course_members, course_contents and
comments tables and their indexes. Objects that already exist are left as they are,
so apply can be run repeatedly.

Examples:
  # Create the database if needed, then the tables
  lmsseed schema apply -d lms --create-database

  # Use a connection string
  lmsseed schema apply --connection postgresql://app@db.internal/lms`,
	Args: cobra.NoArgs,
	RunE: runSchemaApply,
}

var schemaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the schema DDL",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), schema.DDL())
	},
}

type schemaFlagValues struct {
	conn           connectionFlags
	createDatabase bool
	timeout        time.Duration
}

var schemaFlags schemaFlagValues

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaApplyCmd)
	schemaCmd.AddCommand(schemaShowCmd)

	addConnectionFlags(schemaApplyCmd, &schemaFlags.conn, false)
	schemaApplyCmd.Flags().BoolVar(&schemaFlags.createDatabase, "create-database", false,
		"Create the target database first if it does not exist")
	schemaApplyCmd.Flags().DurationVar(&schemaFlags.timeout, "timeout", time.Minute,
		"Upper bound for the whole command")
}

func runSchemaApply(cmd *cobra.Command, args []string) error {
	errOut := cmd.ErrOrStderr()
	logger := logging.NewWriterLogger(errOut, getVerboseFlag(cmd), tui.ColorEnabled(errOut))

	projectCfg, err := loadProjectConfig(".")
	if err != nil {
		return err
	}
	connConfig, err := resolveConnection(schemaFlags.conn, projectCfg)
	if err != nil {
		return err
	}
	logConnectionVerbose(logger, connConfig)

	timeout, err := resolveEffectiveTimeout(cmd, projectCfg, schemaFlags.timeout)
	if err != nil {
		return err
	}
	ctx, cancel := newCommandContext(timeout, errOut, "schema apply")
	defer cancel()

	if schemaFlags.createDatabase {
		maint, closeMaint, err := connect(ctx, db.MaintenanceConfig(connConfig), logger)
		if err != nil {
			return err
		}
		created, err := manager.EnsureExists(ctx, maint, connConfig.Database)
		closeMaint()
		if err != nil {
			return err
		}
		if created {
			logger.Info("Created database %s", connConfig.Database)
		} else {
			logger.Verbose("Database %s already exists", connConfig.Database)
		}
	}

	pool, closePool, err := connect(ctx, connConfig, logger)
	if err != nil {
		return err
	}
	defer closePool()

	if err := schema.Apply(ctx, pool); err != nil {
		return err
	}
	logger.Info("Schema applied to %s", connConfig.Database)
	return nil
}
