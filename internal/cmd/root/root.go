package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cosmosops/analyticalctl/internal/build"
	"github.com/cosmosops/analyticalctl/internal/bulk"
	"github.com/cosmosops/analyticalctl/internal/classify"
	"github.com/cosmosops/analyticalctl/internal/cmd"
	"github.com/cosmosops/analyticalctl/internal/cmd/common"
	"github.com/cosmosops/analyticalctl/internal/cmd/output/jq"
	"github.com/cosmosops/analyticalctl/internal/cmd/root/version"
	"github.com/cosmosops/analyticalctl/internal/config"
	"github.com/cosmosops/analyticalctl/internal/cosmos"
	"github.com/cosmosops/analyticalctl/internal/cosmos/azcli"
	"github.com/cosmosops/analyticalctl/internal/iostreams"
	"github.com/cosmosops/analyticalctl/internal/log"
	"github.com/cosmosops/analyticalctl/internal/meta"
	"github.com/cosmosops/analyticalctl/internal/prompt"
	"github.com/cosmosops/analyticalctl/internal/report"
	"github.com/cosmosops/analyticalctl/internal/retry"
	"github.com/cosmosops/analyticalctl/internal/theme"
	"github.com/cosmosops/analyticalctl/internal/util/normalizers"
	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
)

const (
	ExitOK          = 0
	ExitExecution   = 1
	ExitUsage       = 2
	defaultProfile  = "default"
	profileEnvVarFm = "%s_PROFILE"
)

var (
	rootShort = meta.CLIDescription
	rootLong  = normalizers.LongDesc(fmt.Sprintf(`
		%[1]s finds every Cosmos DB SQL container in an account that still has the
		analytical store enabled and turns it off.

		Databases and containers are listed through the az CLI, which must be on PATH
		and logged in. The containers found are listed, a confirmation is requested,
		and each container is updated with an analytical store TTL of 0. Every az call
		is retried with a fixed delay before it is reported as failed.`, meta.CLIName))
	rootExample = normalizers.Examples(fmt.Sprintf(`
		# List containers that still have the analytical store enabled
		%[1]s -g my-rg -a my-account --list-enabled
		# Disable the analytical store on every container of one database
		%[1]s -g my-rg -a my-account -d orders
		# Disable without prompting and print a json summary
		%[1]s -g my-rg -a my-account --yes -o json`, meta.CLIName))
)

// runtime carries the process collaborators a command invocation uses.
type runtime struct {
	streams   *iostreams.IOStreams
	buildInfo *build.Info
	// newRunner returns the az runner for binary
	newRunner func(binary string) (azcli.Runner, error)
	// newPrompter returns the confirmation prompter writing to out
	newPrompter func(in io.Reader, out io.Writer) bulk.Prompter
	sleep       retry.SleepFunc

	configFilePath string
	profile        string
	cfg            config.Hook
	logger         *slog.Logger
	logCloser      io.Closer
	outputFormat   *cmd.FlagEnum
	colorMode      *cmd.FlagEnum
	logLevel       *cmd.FlagEnum
}

func defaultRuntime(streams *iostreams.IOStreams, bi *build.Info) *runtime {
	return &runtime{
		streams:   streams,
		buildInfo: bi,
		newRunner: func(binary string) (azcli.Runner, error) {
			r := azcli.NewRunner(binary)
			if err := r.Preflight(); err != nil {
				return nil, err
			}
			return r, nil
		},
		newPrompter: func(in io.Reader, out io.Writer) bulk.Prompter {
			return &prompt.LinePrompter{In: in, Out: out, UseTTY: true}
		},
		sleep: retry.SleepContext,
	}
}

func newRootCmd(rt *runtime) *cobra.Command {
	rt.outputFormat = cmd.NewEnum([]string{"json", "yaml", "text"}, common.DefaultOutputFormat)
	rt.colorMode = cmd.NewEnum([]string{"auto", "always", "never"}, common.DefaultColorMode)
	rt.logLevel = cmd.NewEnum([]string{"trace", "debug", "info", "warn", "error"}, common.DefaultLogLevel)

	rootCmd := &cobra.Command{
		Use:           meta.CLIName,
		Short:         rootShort,
		Long:          rootLong,
		Example:       rootExample,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return rt.initialize(c)
		},
		RunE: func(c *cobra.Command, args []string) error {
			return rt.run(cmd.BuildHelper(c, args))
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return rt.close()
		},
	}

	rootCmd.SetIn(rt.streams.In)
	rootCmd.SetOut(rt.streams.Out)
	rootCmd.SetErr(rt.streams.ErrOut)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rt.configFilePath, common.ConfigFilePathFlagName, "",
		"Path to the configuration file to load (default is $XDG_CONFIG_HOME/"+meta.CLIName+"/config.yaml).")
	pf.StringVarP(&rt.profile, common.ProfileFlagName, common.ProfileFlagShort, defaultProfile,
		fmt.Sprintf("Specify the profile to use for this command (env %s).",
			fmt.Sprintf(profileEnvVarFm, strings.ToUpper(meta.CLIName))))
	pf.VarP(rt.outputFormat, common.OutputFlagName, common.OutputFlagShort,
		fmt.Sprintf(`Configures the output format.
- Config path: [ %s ]
- Allowed    : [ %s ]`, common.OutputConfigPath, strings.Join(rt.outputFormat.Allowed, "|")))
	pf.Var(rt.colorMode, common.ColorFlagName,
		fmt.Sprintf(`Controls colorized output.
- Config path: [ %s ]
- Allowed    : [ %s ]`, common.ColorConfigPath, strings.Join(rt.colorMode.Allowed, "|")))
	pf.Var(theme.NewFlag(theme.DefaultName), common.ThemeFlagName,
		fmt.Sprintf(`Color theme for text output.
- Config path: [ %s ]
- Allowed    : [ %s ]`, common.ThemeConfigPath, strings.Join(theme.Available(), "|")))
	pf.Var(rt.logLevel, common.LogLevelFlagName,
		fmt.Sprintf(`Configures the logging level.
- Config path: [ %s ]
- Allowed    : [ %s ]`, common.LogLevelConfigPath, strings.Join(rt.logLevel.Allowed, "|")))
	pf.String(common.LogFileFlagName, "",
		fmt.Sprintf(`Write logs to this file instead of stderr.
- Config path: [ %s ]`, common.LogFileConfigPath))

	f := rootCmd.Flags()
	f.StringP(common.ResourceGroupFlagName, common.ResourceGroupFlagShort, "",
		"Resource group of the Cosmos DB account (required).")
	f.StringP(common.AccountNameFlagName, common.AccountNameFlagShort, "",
		"Cosmos DB account name (required).")
	f.StringP(common.DatabaseNameFlagName, common.DatabaseNameFlagShort, "",
		"Only process this database instead of every database in the account.")
	f.BoolP(common.ListEnabledFlagName, common.ListEnabledFlagShort, false,
		"List containers with the analytical store enabled and exit without changing anything.")
	f.BoolP(common.YesFlagName, common.YesFlagShort, false,
		"Disable without asking for confirmation.")
	f.Int(common.MaxAttemptsFlagName, retry.DefaultMaxAttempts,
		fmt.Sprintf(`Attempts per az call before it is reported as failed.
- Config path: [ %s ]`, common.MaxAttemptsConfigPath))
	f.Duration(common.RetryDelayFlagName, retry.DefaultDelay,
		fmt.Sprintf(`Fixed delay between attempts of an az call.
- Config path: [ %s ]`, common.RetryDelayConfigPath))
	jq.AddFlags(f)

	_ = rootCmd.MarkFlagRequired(common.ResourceGroupFlagName)
	_ = rootCmd.MarkFlagRequired(common.AccountNameFlagName)

	rootCmd.AddCommand(version.NewVersionCmd())

	return rootCmd
}

// initialize loads the profiled configuration, binds flags to it and builds
// the run logger. The results are stored on the command context.
func (rt *runtime) initialize(c *cobra.Command) error {
	if !c.Flags().Changed(common.ProfileFlagName) {
		if p, ok := os.LookupEnv(fmt.Sprintf(profileEnvVarFm, strings.ToUpper(meta.CLIName))); ok && p != "" {
			rt.profile = p
		}
	}

	defaultPath, err := config.GetDefaultConfigFilePath()
	if err != nil {
		return &cmd.ConfigurationError{Err: err}
	}
	path := rt.configFilePath
	if path == "" {
		path = defaultPath
	}
	cfg, err := config.GetConfig(path, rt.profile, defaultPath)
	if err != nil {
		return &cmd.ConfigurationError{Err: fmt.Errorf("failed to load configuration: %w", err)}
	}

	bindings := []struct{ flag, cfgPath string }{
		{common.OutputFlagName, common.OutputConfigPath},
		{common.ColorFlagName, common.ColorConfigPath},
		{common.ThemeFlagName, common.ThemeConfigPath},
		{common.LogLevelFlagName, common.LogLevelConfigPath},
		{common.LogFileFlagName, common.LogFileConfigPath},
		{common.MaxAttemptsFlagName, common.MaxAttemptsConfigPath},
		{common.RetryDelayFlagName, common.RetryDelayConfigPath},
	}
	for _, b := range bindings {
		if f := c.Flags().Lookup(b.flag); f != nil {
			if err := cfg.BindFlag(b.cfgPath, f); err != nil {
				return &cmd.ConfigurationError{Err: err}
			}
		}
	}
	if err := jq.BindFlags(cfg, c.Flags()); err != nil {
		return &cmd.ConfigurationError{Err: err}
	}

	if _, err := common.LogLevelStringToIota(cfg.GetString(common.LogLevelConfigPath)); err != nil {
		return &cmd.ConfigurationError{Err: err}
	}
	logger, closer, err := log.New(log.Options{
		Level:    cfg.GetString(common.LogLevelConfigPath),
		FilePath: cfg.GetString(common.LogFileConfigPath),
		ErrOut:   rt.streams.ErrOut,
	})
	if err != nil {
		return &cmd.ConfigurationError{Err: err}
	}
	rt.cfg, rt.logger, rt.logCloser = cfg, logger, closer

	ctx := context.WithValue(c.Context(), config.ConfigKey, cfg)
	ctx = context.WithValue(ctx, iostreams.StreamsKey, rt.streams)
	ctx = context.WithValue(ctx, log.LoggerKey, logger)
	ctx = context.WithValue(ctx, build.InfoKey, rt.buildInfo)
	c.SetContext(ctx)

	logger.Debug("configuration loaded",
		slog.String("path", cfg.GetPath()),
		slog.String("profile", cfg.GetProfile()))
	return nil
}

func (rt *runtime) close() error {
	if rt.logCloser == nil {
		return nil
	}
	err := rt.logCloser.Close()
	rt.logCloser = nil
	return err
}

// settings are the validated inputs of one bulk run.
type settings struct {
	scope      cosmos.Scope
	opts       bulk.Options
	policy     retry.Policy
	classifier *classify.Classifier
	render     report.RenderConfig
	azBinary   string
}

func (rt *runtime) resolve(helper cmd.Helper) (settings, error) {
	var s settings
	c := helper.GetCmd()
	flags := c.Flags()

	cfg, err := helper.GetConfig()
	if err != nil {
		return s, err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return s, err
	}

	s.scope.ResourceGroup, _ = flags.GetString(common.ResourceGroupFlagName)
	s.scope.AccountName, _ = flags.GetString(common.AccountNameFlagName)
	if err := s.scope.Validate(); err != nil {
		return s, &cmd.ConfigurationError{Err: err}
	}
	s.opts.Database, _ = flags.GetString(common.DatabaseNameFlagName)
	s.opts.Preview, _ = flags.GetBool(common.ListEnabledFlagName)
	s.opts.AutoApprove, _ = flags.GetBool(common.YesFlagName)

	attempts := cfg.GetInt(common.MaxAttemptsConfigPath)
	if attempts < 1 {
		return s, &cmd.ConfigurationError{
			Err: fmt.Errorf("--%s must be at least 1, got %d", common.MaxAttemptsFlagName, attempts),
		}
	}
	delay := cfg.GetDuration(common.RetryDelayConfigPath)
	if delay < 0 {
		return s, &cmd.ConfigurationError{
			Err: fmt.Errorf("--%s must not be negative, got %s", common.RetryDelayFlagName, delay),
		}
	}
	s.policy = retry.Policy{
		MaxAttempts: attempts,
		Delay:       delay,
		Diagnostics: helper.GetStreams().ErrOut,
		Logger:      logger,
		Sleep:       rt.sleep,
	}

	s.classifier, err = classify.New(classify.Paths{
		Primary:  cfg.GetString(common.PrimaryPathConfigPath),
		Fallback: cfg.GetString(common.FallbackPathConfigPath),
	}, classify.DefaultNamePaths())
	if err != nil {
		return s, &cmd.ConfigurationError{Err: err}
	}

	format, err := helper.GetOutputFormat()
	if err != nil {
		return s, err
	}
	colorMode, err := common.ColorModeStringToIota(cfg.GetString(common.ColorConfigPath))
	if err != nil {
		return s, &cmd.ConfigurationError{Err: err}
	}
	palette, err := theme.Get(cfg.GetString(common.ThemeConfigPath))
	if err != nil {
		return s, &cmd.ConfigurationError{Err: err}
	}
	jqSettings, err := jq.ResolveSettings(c, cfg)
	if err != nil {
		return s, &cmd.ConfigurationError{Err: err}
	}
	if err := jq.ValidateOutputFormat(format, jqSettings); err != nil {
		return s, err
	}
	s.render = report.RenderConfig{
		Format:  format,
		Color:   report.ResolveColor(colorMode, helper.GetStreams().Out),
		Palette: palette,
		JQ:      jqSettings,
	}

	s.azBinary = cfg.GetString(common.AzPathConfigPath)
	return s, nil
}

func (rt *runtime) run(helper cmd.Helper) error {
	s, err := rt.resolve(helper)
	if err != nil {
		return err
	}
	logger, _ := helper.GetLogger()
	streams := helper.GetStreams()

	runner, err := rt.newRunner(s.azBinary)
	if err != nil {
		return cmd.PrepareExecutionErrorWithHelper(helper, "az CLI is not available", err,
			"suggestion", "install the Azure CLI and run 'az login'")
	}
	client := azcli.NewClient(runner, s.scope, logger)

	// the question shares a stream with the announce notice
	promptOut := streams.Out
	if s.render.Format != common.TEXT {
		promptOut = streams.ErrOut
	}

	orchestrator := &bulk.Orchestrator{
		Enumerator: &bulk.Enumerator{
			Client:     client,
			Classifier: s.classifier,
			Policy:     s.policy,
			Warnings:   streams.ErrOut,
			Logger:     logger,
		},
		Executor: &bulk.Executor{
			Client: client,
			Policy: s.policy,
			Logger: logger,
		},
		Prompter: rt.newPrompter(streams.In, promptOut),
		Reporter: report.New(streams, s.render),
		Logger:   logger,
	}

	started := time.Now()
	rpt, err := orchestrator.Run(helper.GetContext(), s.opts)
	if err != nil {
		var cfgErr *cmd.ConfigurationError
		if errors.As(err, &cfgErr) {
			return err
		}
		return cmd.PrepareExecutionErrorFromErr(helper, err,
			"resource_group", s.scope.ResourceGroup,
			"account_name", s.scope.AccountName)
	}

	attrs := []any{
		slog.String("status", rpt.Status.String()),
		slog.Duration("elapsed", time.Since(started)),
	}
	if rpt.Result != nil {
		attrs = append(attrs,
			slog.Int("found", rpt.Result.Found),
			slog.Int("disabled", rpt.Result.Disabled))
	}
	logger.Info("run finished", attrs...)
	return nil
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute(ctx context.Context, streams *iostreams.IOStreams, bi *build.Info) int {
	return execute(ctx, defaultRuntime(streams, bi), os.Args[1:])
}

func execute(ctx context.Context, rt *runtime, args []string) int {
	rootCmd := newRootCmd(rt)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	closeErr := rt.close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		return ExitOK
	}

	var executionError *cmd.ExecutionError
	if errors.As(err, &executionError) {
		printExecutionError(rt, executionError)
		return ExitExecution
	}

	fmt.Fprintf(rt.streams.ErrOut, "Error: %v\n", err)
	fmt.Fprintf(rt.streams.ErrOut, "Run '%s --help' for usage.\n", rootCmd.CommandPath())
	return ExitUsage
}

func printExecutionError(rt *runtime, err *cmd.ExecutionError) {
	if rt.logger != nil {
		rt.logger.Debug("execution failed", append([]any{slog.Any("error", err.Err)}, err.Attrs...)...)
	}

	format := common.DefaultOutputFormat
	if rt.cfg != nil {
		format = rt.cfg.GetString(common.OutputConfigPath)
	}
	if format == common.DefaultOutputFormat || format == "" {
		fmt.Fprintf(rt.streams.ErrOut, "Error: %v\n", err)
		for i := 0; i+1 < len(err.Attrs); i += 2 {
			if key, ok := err.Attrs[i].(string); ok && key == "suggestion" {
				fmt.Fprintf(rt.streams.ErrOut, "  suggestion: %v\n", err.Attrs[i+1])
			}
		}
		return
	}

	printer, perr := cli.Format(format, rt.streams.ErrOut)
	if perr != nil {
		fmt.Fprintf(rt.streams.ErrOut, "Error: %v\n", err)
		return
	}
	defer printer.Flush()
	printer.Print(map[string]any{"error": err.Error()})
}
