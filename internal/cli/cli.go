package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/sosgridgo/internal/app"
	"github.com/vk/sosgridgo/internal/config"
	"github.com/vk/sosgridgo/internal/observability"
	"github.com/vk/sosgridgo/internal/registry"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPaths []string
	logFormat   string
	logLevel    string
}

// NewRootCommand builds the sosgrid command tree. Command output goes to the
// command's stdout, logs go to its stderr. modules overrides the compiled-in
// sector models when non-empty.
func NewRootCommand(loader config.Loader, modules ...registry.Module) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "sosgrid",
		Short: "sosgrid - a system-of-systems model runner",
		Long: `sosgrid composes sector models into system-of-systems models and runs them
over a sequence of timesteps. Models are declared in .hcl files; cyclic
dependencies are resolved by iterating to a fixed point.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVarP(&flags.configPaths, "config", "c", nil, "Path to an .hcl file or a directory of .hcl files (repeatable). Positional arguments are added too.")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	root.AddCommand(
		newRunCmd(flags, loader, modules),
		newValidateCmd(flags, loader, modules),
		newGraphCmd(flags, loader, modules),
	)
	return root
}

// Execute runs the command tree with args, writing command output to outW and
// logs to errW.
func Execute(ctx context.Context, args []string, outW, errW io.Writer, loader config.Loader, modules ...registry.Module) error {
	root := NewRootCommand(loader, modules...)
	root.SetArgs(args)
	root.SetOut(outW)
	root.SetErr(errW)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	// cobra reports unknown commands as plain errors.
	if strings.HasPrefix(err.Error(), "unknown command") {
		return usageError(err)
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

func (f *globalFlags) appConfig(args []string, base app.Config) (*app.Config, error) {
	base.ConfigPaths = append(append([]string(nil), f.configPaths...), args...)
	base.LogFormat = strings.ToLower(f.logFormat)
	base.LogLevel = strings.ToLower(f.logLevel)
	cfg, err := app.NewConfig(base)
	if err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

func newApp(cmd *cobra.Command, cfg *app.Config, loader config.Loader, modules []registry.Module) (*app.App, error) {
	return app.NewApp(cmd.ErrOrStderr(), cfg, loader, modules...)
}

func newRunCmd(flags *globalFlags, loader config.Loader, modules []registry.Module) *cobra.Command {
	var (
		runs            []string
		workers         int
		healthcheckPort int
		reportDir       string
		publishURL      string
		publishVia      string
		publishEvent    string
		tracing         bool
		tracingExporter string
		otlpEndpoint    string
	)

	cmd := &cobra.Command{
		Use:   "run [CONFIG_PATH...]",
		Short: "Execute model runs",
		Long:  `Execute every configured model run, or those selected with --run. Independent runs execute in parallel.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tracingCfg := observability.TracingConfigFromEnv()
			if cmd.Flags().Changed("tracing") {
				tracingCfg.Enabled = tracing
			}
			if cmd.Flags().Changed("tracing-exporter") {
				tracingCfg.Exporter = tracingExporter
			}
			if cmd.Flags().Changed("otlp-endpoint") {
				tracingCfg.Endpoint = otlpEndpoint
			}

			cfg, err := flags.appConfig(args, app.Config{
				Workers:          workers,
				Runs:             runs,
				HealthcheckPort:  healthcheckPort,
				ReportDir:        reportDir,
				PublishURL:       publishURL,
				PublishTransport: publishVia,
				PublishEvent:     publishEvent,
				Tracing:          tracingCfg,
			})
			if err != nil {
				return err
			}
			a, err := newApp(cmd, cfg, loader, modules)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
	cmd.Flags().StringSliceVarP(&runs, "run", "r", nil, "Model run to execute (repeatable). Default: all.")
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "Number of model runs executed concurrently.")
	cmd.Flags().IntVar(&healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check and /metrics server. 0 is disabled.")
	cmd.Flags().StringVar(&reportDir, "report-dir", "", "Directory that receives one YAML report per model run.")
	cmd.Flags().StringVar(&publishURL, "publish-url", "", "Endpoint that receives each completed timestep.")
	cmd.Flags().StringVar(&publishVia, "publish-transport", "socketio", "Transport for --publish-url. Options: 'socketio' or 'http'.")
	cmd.Flags().StringVar(&publishEvent, "publish-event", "timestep", "socket.io event name used by --publish-url.")
	cmd.Flags().BoolVar(&tracing, "tracing", false, "Enable OpenTelemetry tracing.")
	cmd.Flags().StringVar(&tracingExporter, "tracing-exporter", "stdout", "Tracing exporter. Options: 'stdout' or 'otlp'.")
	cmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP gRPC endpoint used by the otlp exporter.")
	return cmd
}

func newValidateCmd(flags *globalFlags, loader config.Loader, modules []registry.Module) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [CONFIG_PATH...]",
		Short: "Check that every sos_model and model_run can be built",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.appConfig(args, app.Config{Workers: 1})
			if err != nil {
				return err
			}
			a, err := newApp(cmd, cfg, loader, modules)
			if err != nil {
				return err
			}
			if err := a.Validate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	}
}

func newGraphCmd(flags *globalFlags, loader config.Loader, modules []registry.Module) *cobra.Command {
	return &cobra.Command{
		Use:   "graph SOS_MODEL [CONFIG_PATH...]",
		Short: "Print a sos_model's dependency graph in DOT format",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
				return usageError(err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.appConfig(args[1:], app.Config{Workers: 1})
			if err != nil {
				return err
			}
			a, err := newApp(cmd, cfg, loader, modules)
			if err != nil {
				return err
			}
			return a.Graph(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}
