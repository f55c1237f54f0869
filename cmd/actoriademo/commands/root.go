package commands

import (
	"github.com/btcsuite/btclog"
	"github.com/roasbeef/actoria/actor"
	actorlog "github.com/roasbeef/actoria/internal/log"
	"github.com/spf13/cobra"
)

var (
	// workers sizes the Engine's worker pool for every scenario command.
	workers int

	// logDir, when non-empty, enables rotating file logging alongside
	// the console in addition to stdout.
	logDir string

	// verbose raises every scenario's engine logger to debug level.
	verbose bool
)

// rootCmd is the base command for the demo CLI.
var rootCmd = &cobra.Command{
	Use:   "actoriademo",
	Short: "Runs live demonstrations of the actoria actor runtime",
	Long: `actoriademo spawns the actor runtime's reference scenarios against a
real Engine: ping-pong with linked exit-reason propagation, dining
chopsticks, a become-driven state machine, and an until-predicate
blocking receive.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().IntVar(
		&workers, "workers", 4,
		"Number of Engine worker goroutines",
	)
	rootCmd.PersistentFlags().StringVar(
		&logDir, "log-dir", "",
		"Directory for rotating log files (empty disables file logging)",
	)
	rootCmd.PersistentFlags().BoolVar(
		&verbose, "verbose", false,
		"Log every scheduler and lifecycle event at debug level",
	)

	rootCmd.AddCommand(pingpongCmd)
	rootCmd.AddCommand(diningCmd)
	rootCmd.AddCommand(statemachineCmd)
	rootCmd.AddCommand(stackCmd)
}

// newEngine builds an Engine sized by --workers, with logging wired per
// --log-dir/--verbose, tagged with subsystem for attribution in the shared
// log stream.
func newEngine(subsystem string) (*actor.Engine, error) {
	if logDir != "" {
		if err := actorlog.InitLogRotator(&actorlog.LogRotatorConfig{
			LogDir: logDir,
		}); err != nil {
			return nil, err
		}
	}

	logger := actorlog.SubLogger(subsystem)
	if verbose {
		actorlog.SetLevel(btclog.LevelDebug)
	}

	return actor.NewEngine(actor.EngineConfig{
		Workers: workers,
		Log:     logger,
	}), nil
}
