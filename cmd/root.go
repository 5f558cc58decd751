package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/inference-sim/aloha-sim/sim/report"
	"github.com/inference-sim/aloha-sim/sim/scenario"
	"github.com/inference-sim/aloha-sim/sim/trace"
)

var (
	// CLI flags shared by run and validate
	scenarioPath string // YAML scenario file; empty = built-in pure ALOHA
	logLevel     string // Log verbosity level

	// CLI flags overriding the scenario
	seed       int64   // Seed for every random stream
	horizon    float64 // Simulation horizon (virtual time units)
	traceLevel string  // Decision trace level
	rngBackend string  // Random stream family

	// CLI flags for the built-in pure ALOHA scenario
	rate        float64 // Packets per time unit, per source
	meanSize    float64 // Mean packet size in bytes
	serviceRate float64 // Link rate in bytes per time unit
	backoffMax  float64 // Upper bound of the uniform backoff
	capacity    int     // Buffer capacity in bytes, < 0 = unlimited
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "aloha-sim",
	Short: "Discrete-event simulator for shared-medium ALOHA networks",
}

// runCmd executes one scenario and prints its summary
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario to its horizon",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		spec, err := resolveSpec(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := runScenario(spec, os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// validateCmd checks a scenario without running it
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a scenario file for configuration errors",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		if scenarioPath == "" {
			logrus.Fatalf("--scenario is required")
		}
		spec, err := scenario.LoadSpec(scenarioPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := spec.Validate(); err != nil {
			logrus.Fatalf("Scenario %s is invalid: %v", scenarioPath, err)
		}
		fmt.Fprintf(os.Stdout, "Scenario %s is valid: %d servers, %d sources, %d channels\n",
			scenarioPath, len(spec.Servers), len(spec.Sources), len(spec.Channels))
	},
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// resolveSpec loads the scenario named by --scenario, or builds the pure
// ALOHA scenario from flags, then applies explicitly set overrides.
func resolveSpec(flags *pflag.FlagSet) (*scenario.Spec, error) {
	var spec *scenario.Spec
	if scenarioPath != "" {
		loaded, err := scenario.LoadSpec(scenarioPath)
		if err != nil {
			return nil, err
		}
		spec = loaded
	} else {
		spec = scenario.PureAloha(scenario.AlohaParams{
			Seed:        seed,
			Horizon:     horizon,
			Rate:        rate,
			MeanSize:    meanSize,
			ServiceRate: serviceRate,
			BackoffMax:  backoffMax,
			Capacity:    capacity,
		})
	}
	if flags.Changed("seed") {
		spec.Seed = seed
	}
	if flags.Changed("horizon") {
		spec.Horizon = horizon
	}
	if flags.Changed("trace") {
		spec.Trace = traceLevel
	}
	if flags.Changed("rng") {
		spec.RNG = rngBackend
	}
	return spec, nil
}

// runScenario builds, executes and reports spec on w.
func runScenario(spec *scenario.Spec, w io.Writer) error {
	run, err := scenario.Build(spec)
	if err != nil {
		return err
	}
	logrus.Infof("Starting simulation: horizon=%.3f, seed=%d", spec.Horizon, spec.Seed)

	startTime := time.Now()
	run.Execute()
	logrus.Infof("Simulation wall time: %s", time.Since(startTime))

	report.Collect(run).Print(w)
	if run.Trace != nil {
		printTraceSummary(w, trace.Summarize(run.Trace))
	}
	return nil
}

func printTraceSummary(w io.Writer, ts *trace.TraceSummary) {
	fmt.Fprintf(w, "\n=== Decision Trace ===\n")
	fmt.Fprintf(w, "Admission Decisions  : %d (admitted %d, rejected %d)\n", ts.TotalDecisions, ts.AdmittedCount, ts.RejectedCount)
	fmt.Fprintf(w, "Transmissions        : %d (collided %d)\n", ts.Transmissions, ts.CollidedCount)
	fmt.Fprintf(w, "Max Attempts         : %d\n", ts.MaxAttempt)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	defaults := scenario.DefaultAlohaParams()

	for _, c := range []*cobra.Command{runCmd, validateCmd} {
		c.Flags().StringVar(&scenarioPath, "scenario", "", "Path to a YAML scenario file")
		c.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	}

	runCmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Seed for every random stream (overrides the scenario)")
	runCmd.Flags().Float64Var(&horizon, "horizon", defaults.Horizon, "Simulation horizon in virtual time units (overrides the scenario)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Decision trace level (none, decisions)")
	runCmd.Flags().StringVar(&rngBackend, "rng", "math", "Random stream family (math, mrg32k3a)")

	// Built-in pure ALOHA scenario
	runCmd.Flags().Float64Var(&rate, "rate", defaults.Rate, "Packets per time unit offered by each source")
	runCmd.Flags().Float64Var(&meanSize, "mean-size", defaults.MeanSize, "Mean packet size in bytes")
	runCmd.Flags().Float64Var(&serviceRate, "service-rate", defaults.ServiceRate, "Link rate in bytes per time unit")
	runCmd.Flags().Float64Var(&backoffMax, "backoff-max", defaults.BackoffMax, "Upper bound of the uniform collision backoff")
	runCmd.Flags().IntVar(&capacity, "capacity", defaults.Capacity, "Buffer capacity in bytes per server (negative = unlimited)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}
