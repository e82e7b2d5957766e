package core

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sockerless/dbexport/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestRun_Success(t *testing.T) {
	opener := newFakeOpener("https://acct1.blob/")
	exp := &fakeExporter{addr: "https://acct1.blob/exports/orders.bacpac"}
	run := NewRun(opener, exp, zerolog.Nop())

	out := run.Execute(context.Background(), validConfig(), nil)
	require.NoError(t, out.Err)
	assert.Equal(t, api.OutcomeSucceeded, out.Kind)
	assert.Equal(t, "https://acct1.blob/exports/orders.bacpac", out.ArtifactAddress)
	assert.Equal(t, api.StageSucceeded, run.State())
	assert.Equal(t, []api.Stage{
		api.StageIdle,
		api.StageValidating,
		api.StagePreparingTarget,
		api.StageInvoking,
		api.StageSucceeded,
	}, run.History())

	assert.Equal(t, 1, exp.calls)
	assert.Equal(t, "myserver.example", exp.last.ServerName)
	assert.Equal(t, "https://acct1.blob/exports/orders.bacpac", exp.last.BlobURI)
	assert.Equal(t, testKey, exp.last.StorageKey)
}

func TestRun_EmptyAddressIsSuccess(t *testing.T) {
	run := NewRun(newFakeOpener("https://acct1.blob/"), &fakeExporter{}, zerolog.Nop())
	out := run.Execute(context.Background(), validConfig(), nil)
	assert.Equal(t, api.OutcomeSucceeded, out.Kind)
	assert.Empty(t, out.ArtifactAddress)
}

func TestRun_DryRunNeverYieldsAddress(t *testing.T) {
	opener := newFakeOpener("https://acct1.blob/")
	exp := &fakeExporter{addr: "https://acct1.blob/exports/orders.bacpac"}
	run := NewRun(opener, exp, zerolog.Nop())

	cfg := validConfig()
	cfg.DryRun = true
	out := run.Execute(context.Background(), cfg, nil)

	assert.Equal(t, api.OutcomeDryRunSkipped, out.Kind)
	assert.Empty(t, out.ArtifactAddress)
	assert.NoError(t, out.Err)
	assert.Equal(t, api.StageDryRunCompleted, run.State())
	assert.True(t, exp.last.DryRun)
	assert.True(t, opener.store.containers["exports"], "container is prepared on dry run")
}

func TestRun_ValidationFailureTouchesNothing(t *testing.T) {
	opener := newFakeOpener("https://acct1.blob/")
	exp := &fakeExporter{}
	run := NewRun(opener, exp, zerolog.Nop())

	cfg := validConfig()
	cfg.Container = ""
	out := run.Execute(context.Background(), cfg, nil)

	assert.Equal(t, api.OutcomeFailed, out.Kind)
	assert.Equal(t, api.StageValidating, out.Stage)
	requireConfigError(t, out.Err, api.FieldDestinationContainer)
	assert.Zero(t, opener.calls)
	assert.Zero(t, exp.calls)
	assert.Equal(t, []api.Stage{api.StageIdle, api.StageValidating, api.StageFailed}, run.History())
}

func TestRun_StorageUnreachable(t *testing.T) {
	opener := newFakeOpener("https://acct1.blob/")
	opener.err = errors.New("dial tcp: connection refused")
	exp := &fakeExporter{}
	run := NewRun(opener, exp, zerolog.Nop())

	out := run.Execute(context.Background(), validConfig(), nil)
	assert.Equal(t, api.OutcomeFailed, out.Kind)
	assert.Equal(t, api.StagePreparingTarget, out.Stage)
	var stErr *api.StorageUnavailableError
	assert.ErrorAs(t, out.Err, &stErr)
	assert.Zero(t, exp.calls)
}

func TestRun_ExporterErrorUnmodified(t *testing.T) {
	want := &api.RemoteExportError{Code: "DatabaseNotFound", Message: "no such db"}
	run := NewRun(newFakeOpener("https://acct1.blob/"), &fakeExporter{err: want}, zerolog.Nop())

	out := run.Execute(context.Background(), validConfig(), nil)
	assert.Equal(t, api.StageInvoking, out.Stage)
	assert.Same(t, want, out.Err)
}

func TestRun_EnvironmentDefaults(t *testing.T) {
	opener := newFakeOpener("https://envacct.blob/")
	exp := &fakeExporter{}
	run := NewRun(opener, exp, zerolog.Nop())

	cfg := validConfig()
	cfg.Storage = api.StorageAccount{}
	cfg.Endpoint = ""
	env := &api.EnvironmentDefaults{
		Name:           "prod",
		BackupStorage:  api.StorageAccount{Name: "envacct", Key: testKey},
		SqlDacEndpoint: "https://env-dac.example",
	}
	out := run.Execute(context.Background(), cfg, env)
	require.NoError(t, out.Err)
	assert.Equal(t, "envacct", opener.store.account.Name)
	assert.Equal(t, "https://env-dac.example", exp.last.Endpoint)
}

func TestRun_SingleUse(t *testing.T) {
	exp := &fakeExporter{}
	run := NewRun(newFakeOpener("https://acct1.blob/"), exp, zerolog.Nop())
	run.Execute(context.Background(), validConfig(), nil)

	out := run.Execute(context.Background(), validConfig(), nil)
	assert.Equal(t, api.OutcomeFailed, out.Kind)
	assert.ErrorIs(t, out.Err, ErrRunConsumed)
	assert.Equal(t, 1, exp.calls)
}

func TestRun_Spans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(trace.NewNoopTracerProvider())

	opener := newFakeOpener("https://acct1.blob/")
	opener.err = errors.New("connection refused")
	run := NewRun(opener, &fakeExporter{}, zerolog.Nop())
	run.Execute(context.Background(), validConfig(), nil)

	spans := exporter.GetSpans()
	names := make(map[string]tracetest.SpanStub)
	for _, s := range spans {
		names[s.Name] = s
	}
	require.Contains(t, names, "export")
	require.Contains(t, names, "prepare-target")
	assert.NotContains(t, names, "invoke-export")

	assert.Equal(t, codes.Error, names["prepare-target"].Status.Code)
	assert.Equal(t, codes.Error, names["export"].Status.Code)
	assert.Equal(t, names["export"].SpanContext.SpanID(), names["prepare-target"].Parent.SpanID())
}
