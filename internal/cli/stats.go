package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/vvka-141/lmsseed/internal/logging"
	"github.com/vvka-141/lmsseed/internal/stats"
	"github.com/vvka-141/lmsseed/internal/tui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report aggregates over the loaded data",
	Long: `Stats reports aggregates over users, courses and enrollments.

Output is a styled table on a terminal and indented JSON when stdout is piped
or --json is given.

Examples:
  lmsseed stats users -d lms
  lmsseed stats courses -d lms --json | jq '.overall_stats'`,
}

var statsUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Course creation and enrollment per user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats(cmd, func(ctx context.Context, pool *pgxpool.Pool, out statsOutput) error {
			s, err := stats.Users(ctx, pool)
			if err != nil {
				return err
			}
			if out.json {
				return stats.WriteJSON(out.printer.W, s)
			}
			out.printer.Users(s)
			return nil
		})
	},
}

var statsCoursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Course prices, teachers and member counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats(cmd, func(ctx context.Context, pool *pgxpool.Pool, out statsOutput) error {
			s, err := stats.Courses(ctx, pool)
			if err != nil {
				return err
			}
			if out.json {
				return stats.WriteJSON(out.printer.W, s)
			}
			out.printer.Courses(s)
			return nil
		})
	},
}

type statsFlagValues struct {
	conn    connectionFlags
	json    bool
	timeout time.Duration
}

var statsFlags statsFlagValues

type statsOutput struct {
	json    bool
	printer stats.Printer
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(statsUsersCmd)
	statsCmd.AddCommand(statsCoursesCmd)

	addConnectionFlags(statsCmd, &statsFlags.conn, true)
	statsCmd.PersistentFlags().BoolVar(&statsFlags.json, "json", false,
		"Write JSON even when stdout is a terminal")
	statsCmd.PersistentFlags().DurationVar(&statsFlags.timeout, "timeout", time.Minute,
		"Upper bound for the whole command")
}

// resolveStatsOutput picks JSON when asked for or when out is not a terminal.
func resolveStatsOutput(cmd *cobra.Command, forceJSON bool) statsOutput {
	out := cmd.OutOrStdout()
	return statsOutput{
		json:    forceJSON || !tui.IsTerminal(out),
		printer: stats.Printer{W: out, Styled: tui.ColorEnabled(out)},
	}
}

func runStats(cmd *cobra.Command, report func(ctx context.Context, pool *pgxpool.Pool, out statsOutput) error) error {
	errOut := cmd.ErrOrStderr()
	logger := logging.NewWriterLogger(errOut, getVerboseFlag(cmd), tui.ColorEnabled(errOut))

	projectCfg, err := loadProjectConfig(".")
	if err != nil {
		return err
	}
	connConfig, err := resolveConnection(statsFlags.conn, projectCfg)
	if err != nil {
		return err
	}
	logConnectionVerbose(logger, connConfig)

	timeout, err := resolveEffectiveTimeout(cmd, projectCfg, statsFlags.timeout)
	if err != nil {
		return err
	}
	ctx, cancel := newCommandContext(timeout, errOut, "stats")
	defer cancel()

	pool, closePool, err := connect(ctx, connConfig, logger)
	if err != nil {
		return err
	}
	defer closePool()

	return report(ctx, pool, resolveStatsOutput(cmd, statsFlags.json))
}
