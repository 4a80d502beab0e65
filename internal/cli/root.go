package cli

import (
	stdcontext "context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/oneinstance/internal/config"
	"github.com/Paintersrp/oneinstance/internal/logging"
	"github.com/Paintersrp/oneinstance/internal/metrics"
	"github.com/Paintersrp/oneinstance/internal/rendezvous"
	"github.com/Paintersrp/oneinstance/internal/runtime/process"
	"github.com/Paintersrp/oneinstance/internal/signals"
	"github.com/Paintersrp/oneinstance/internal/supervisor"
)

type options struct {
	configPath      string
	logLevel        string
	logStyle        string
	signal          string
	metricsTextfile string
	printChannel    bool
}

// exitError carries a status code for an error that has already been logged.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func NewRootCmd() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *options) {
	opts := &options{}

	root := &cobra.Command{
		Use:   "one-instance [flags] <program> [args...]",
		Short: "Run a program so that only one copy of it is ever alive",
		Long: `Runs <program> with the given arguments. If another one-instance is already
running the same program file name, it is asked to stop its child first and
this invocation takes over once that child has exited.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := root.Flags()
	// Everything after the program belongs to the program.
	flags.SetInterspersed(false)
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML settings file (env "+config.EnvConfig+")")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, off")
	flags.StringVar(&opts.logStyle, "log-style", "", "Log colouring: always, auto, never")
	flags.StringVar(&opts.signal, "signal", "", "Signal sent to the child's process group on preemption (unix)")
	flags.StringVar(&opts.metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file on exit")
	flags.BoolVar(&opts.printChannel, "print-channel", false, "Print the rendezvous channel name for <program> and exit")

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root, opts
}

// Execute runs the CLI entrypoint.
func Execute() {
	root := NewRootCmd()
	if err := root.ExecuteContext(stdcontext.Background()); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.LoadFromEnv(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("log-style") {
		cfg.Log.Style = opts.logStyle
	}
	if flags.Changed("signal") {
		cfg.Preempt.Signal = opts.signal
	}
	if flags.Changed("metrics-textfile") {
		cfg.Metrics.Textfile = opts.metricsTextfile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	program, childArgs := args[0], args[1:]

	channel, err := rendezvous.OpenFor(program)
	if err != nil {
		return err
	}
	if opts.printChannel {
		fmt.Fprintln(cmd.OutOrStdout(), channel.Name())
		return nil
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	style, _ := logging.ParseStyle(cfg.Log.Style)
	logger, err := logging.New(logging.Options{
		Level:     cfg.Log.Level,
		Style:     style,
		Timestamp: cfg.Log.TimestampEnabled(),
		Out:       cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	interrupt, err := process.ParseSignal(cfg.Preempt.Signal)
	if err != nil {
		return err
	}

	metrics.EmitBuildInfo(channel.Name())
	sigs, stop := signals.Notify()
	defer stop()

	res, err := supervisor.Run(cmd.Context(), supervisor.Config{
		Program:   program,
		Args:      childArgs,
		Stdin:     cmd.InOrStdin(),
		Stdout:    cmd.OutOrStdout(),
		Stderr:    cmd.ErrOrStderr(),
		Channel:   channel,
		Signals:   sigs,
		Interrupt: interrupt,
		Logger:    &logger,
	})
	if werr := metrics.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
		logger.Warn().Err(werr).Str("path", cfg.Metrics.Textfile).Msg("metrics not written")
	}
	if err != nil {
		return &exitError{code: 1, err: err}
	}

	logger.Debug().
		Str("outcome", res.Outcome.String()).
		Str("cause", string(res.Cause)).
		Int("pid", res.Pid).
		Msg("supervisor finished")
	return nil
}
