package core

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/sockerless/dbexport/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/sockerless/dbexport/core"

// ErrRunConsumed is returned when Execute is called on a Run that already ran.
var ErrRunConsumed = errors.New("export run already executed")

// Run executes one export: resolve, validate, prepare the target, invoke the
// export service. A Run is single use.
type Run struct {
	opener   api.StoreOpener
	exporter api.Exporter
	logger   zerolog.Logger
	tracer   trace.Tracer

	state   api.Stage
	history []api.Stage
}

// NewRun creates an idle run.
func NewRun(opener api.StoreOpener, exporter api.Exporter, logger zerolog.Logger) *Run {
	return &Run{
		opener:   opener,
		exporter: exporter,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
		state:    api.StageIdle,
		history:  []api.Stage{api.StageIdle},
	}
}

// State returns the current stage.
func (r *Run) State() api.Stage {
	return r.state
}

// History returns every stage the run has entered, in order.
func (r *Run) History() []api.Stage {
	out := make([]api.Stage, len(r.history))
	copy(out, r.history)
	return out
}

func (r *Run) enter(s api.Stage) {
	r.state = s
	r.history = append(r.history, s)
}

func (r *Run) fail(stage api.Stage, err error) api.Outcome {
	r.enter(api.StageFailed)
	return api.Outcome{Kind: api.OutcomeFailed, Stage: stage, Err: err}
}

// Execute runs the pipeline against cfg, filling defaults from env (which may
// be nil). Errors from any step end the run and are returned unmodified in
// the outcome.
func (r *Run) Execute(ctx context.Context, cfg api.ExportConfiguration, env *api.EnvironmentDefaults) api.Outcome {
	if r.state != api.StageIdle {
		return api.Outcome{Kind: api.OutcomeFailed, Stage: r.state, Err: ErrRunConsumed}
	}

	ctx, span := r.tracer.Start(ctx, "export",
		trace.WithAttributes(attribute.Bool("dbexport.dry_run", cfg.DryRun)))
	defer span.End()

	outcome := r.execute(ctx, Resolve(cfg, env))
	span.SetAttributes(attribute.String("dbexport.outcome", outcome.Kind.String()))
	if outcome.Err != nil {
		markSpan(span, outcome.Err, string(outcome.Stage))
	}
	return outcome
}

func (r *Run) execute(ctx context.Context, cfg api.ExportConfiguration) api.Outcome {
	r.enter(api.StageValidating)
	cfg, err := Validate(cfg)
	if err != nil {
		return r.fail(api.StageValidating, err)
	}

	r.logger.Info().
		Str("database", cfg.Source.Database).
		Str("server", StripServerScheme(cfg.Source.Server)).
		Str("account", cfg.Storage.Name).
		Bool("dry_run", cfg.DryRun).
		Msg("exporting database")

	r.enter(api.StagePreparingTarget)
	target, err := r.prepare(ctx, cfg)
	if err != nil {
		return r.fail(api.StagePreparingTarget, err)
	}
	r.logger.Info().Str("blob", target.Address).Msg("starting export")

	r.enter(api.StageInvoking)
	addr, err := r.invoke(ctx, cfg, target)
	if err != nil {
		return r.fail(api.StageInvoking, err)
	}

	if cfg.DryRun {
		r.enter(api.StageDryRunCompleted)
		return api.Outcome{Kind: api.OutcomeDryRunSkipped}
	}
	r.enter(api.StageSucceeded)
	return api.Outcome{Kind: api.OutcomeSucceeded, ArtifactAddress: addr}
}

func (r *Run) prepare(ctx context.Context, cfg api.ExportConfiguration) (api.ExportTarget, error) {
	ctx, span := r.tracer.Start(ctx, "prepare-target", trace.WithAttributes(
		attribute.String("dbexport.storage_account", cfg.Storage.Name),
		attribute.String("dbexport.container", cfg.Container),
	))
	defer span.End()

	target, err := PrepareTarget(ctx, r.opener, cfg)
	if err != nil {
		markSpan(span, err, "prepare target")
	}
	return target, err
}

func (r *Run) invoke(ctx context.Context, cfg api.ExportConfiguration, target api.ExportTarget) (string, error) {
	ctx, span := r.tracer.Start(ctx, "invoke-export", trace.WithAttributes(
		attribute.String("dbexport.database", cfg.Source.Database),
		attribute.String("dbexport.blob", target.Address),
	))
	defer span.End()

	req, err := BuildExportRequest(cfg, target)
	if err != nil {
		markSpan(span, err, "build export request")
		return "", err
	}
	addr, err := invokeExport(ctx, r.exporter, req)
	if err != nil {
		markSpan(span, err, "invoke export")
		return "", err
	}
	return addr, nil
}

func markSpan(span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
}
