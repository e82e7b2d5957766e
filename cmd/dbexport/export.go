package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/sockerless/dbexport/api"
	"github.com/sockerless/dbexport/azure"
	"github.com/sockerless/dbexport/core"
	"github.com/sockerless/dbexport/dac"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type exportOptions struct {
	db           string
	storage      string
	container    string
	dbName       string
	dacEndpoint  string
	whatIf       bool
	environment  string
	noWait       bool
	pollInterval time.Duration
	waitTimeout  time.Duration
}

func newExportCmd(a *app) *cobra.Command {
	o := &exportOptions{}
	cmd := &cobra.Command{
		Use:     "exportdatabase",
		Aliases: []string{"xdb"},
		Short:   "Export a database to a .bacpac blob",
		Long: `Export a database to <container>/<database>.bacpac in the destination
storage account. The container is created if it does not exist. Storage and
export endpoint default to the selected environment profile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := a.logger()
			if err != nil {
				return err
			}
			if code := runExport(cmd.Context(), o, logger); code != api.ExitOK {
				return &exitError{code: code}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.SetNormalizeFunc(whatIfAlias)
	f.StringVar(&o.db, "db", os.Getenv("DBEXPORT_DB_CONNECTION"), "SQL Server connection string of the source database")
	f.StringVarP(&o.storage, "destination-storage", "s", "", "destination storage connection string or account name")
	f.StringVarP(&o.container, "destination-container", "c", "", "destination blob container")
	f.StringVar(&o.dbName, "dbname", "", "database name, overriding the connection string's catalog")
	f.StringVar(&o.dacEndpoint, "dac", "", "SQL DAC import/export endpoint URL")
	f.BoolVar(&o.whatIf, "what-if", false, "validate and prepare without moving data (alias --dry-run)")
	f.StringVarP(&o.environment, "environment", "e", "", "environment profile supplying defaults")
	f.BoolVar(&o.noWait, "no-wait", false, "return once the export is queued")
	f.DurationVar(&o.pollInterval, "poll-interval", 10*time.Second, "delay between export status checks")
	f.DurationVar(&o.waitTimeout, "wait-timeout", 0, "give up waiting after this long (0 waits indefinitely)")
	return cmd
}

// whatIfAlias makes --dry-run another spelling of --what-if.
func whatIfAlias(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "dry-run" {
		name = "what-if"
	}
	return pflag.NormalizedName(name)
}

// runExport performs one export and returns the process exit code. Every
// failure, including bad flags, goes through the reporter.
func runExport(ctx context.Context, o *exportOptions, logger zerolog.Logger) int {
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := core.InitTracer("dbexport")
	if err != nil {
		logger.Warn().Err(err).Msg("tracing disabled")
	} else {
		defer shutdown(context.Background())
	}

	cfg, env, err := buildConfiguration(o)
	if err != nil {
		return core.Report(logger, api.Outcome{Kind: api.OutcomeFailed, Stage: api.StageIdle, Err: err})
	}

	azCfg := azure.ConfigFromEnv()
	if err := azCfg.Validate(); err != nil {
		return core.Report(logger, api.Outcome{Kind: api.OutcomeFailed, Stage: api.StageIdle,
			Err: &api.ConfigurationError{Field: api.FieldDestinationStorage, Reason: err.Error()}})
	}
	clients, err := azure.NewClients(azCfg)
	if err != nil {
		return core.Report(logger, api.Outcome{Kind: api.OutcomeFailed, Stage: api.StageIdle,
			Err: &api.ConfigurationError{Field: api.FieldDestinationStorage, Reason: err.Error()}})
	}

	opts := dac.Options{PollInterval: o.pollInterval, WaitTimeout: o.waitTimeout}
	if o.noWait {
		opts.PollInterval = 0
	}
	run := core.NewRun(
		azure.NewOpener(azCfg, clients, logger),
		dac.NewClient(opts, logger),
		logger,
	)
	return core.Report(logger, run.Execute(ctx, cfg, env))
}

// buildConfiguration turns flags into an export configuration and looks up
// the environment profile, if one is selected.
func buildConfiguration(o *exportOptions) (api.ExportConfiguration, *api.EnvironmentDefaults, error) {
	source, err := api.ParseSQLConnection(o.db)
	if err != nil {
		return api.ExportConfiguration{}, nil, &api.ConfigurationError{Field: "Db", Reason: err.Error()}
	}
	if o.dbName != "" {
		source.Database = o.dbName
	}
	storage, err := api.ParseStorageAccount(o.storage)
	if err != nil {
		return api.ExportConfiguration{}, nil, &api.ConfigurationError{Field: api.FieldDestinationStorage, Reason: err.Error()}
	}

	cfg := api.ExportConfiguration{
		Source:    source,
		Storage:   storage,
		Container: o.container,
		Endpoint:  o.dacEndpoint,
		DryRun:    o.whatIf,
	}

	name := o.environment
	if name == "" {
		name = core.ActiveEnvironmentName()
	}
	if name == "" {
		return cfg, nil, nil
	}
	reg, err := core.LoadRegistry(core.RegistryPath())
	if err != nil {
		return cfg, nil, &api.ConfigurationError{Field: "Environment", Reason: err.Error()}
	}
	env, err := reg.Lookup(name)
	if err != nil {
		return cfg, nil, &api.ConfigurationError{Field: "Environment", Reason: err.Error()}
	}
	return cfg, env, nil
}
