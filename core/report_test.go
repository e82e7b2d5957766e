package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sockerless/dbexport/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestReport_Success(t *testing.T) {
	var buf bytes.Buffer
	code := Report(zerolog.New(&buf), api.Outcome{
		Kind:            api.OutcomeSucceeded,
		ArtifactAddress: "https://acct1.blob/exports/orders.bacpac",
	})
	assert.Equal(t, api.ExitOK, code)

	recs := decodeRecords(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "*** EXPORT COMPLETE ***", recs[0]["message"])
	assert.Equal(t, "https://acct1.blob/exports/orders.bacpac", recs[0]["output"])
}

func TestReport_SuccessWithoutAddress(t *testing.T) {
	var buf bytes.Buffer
	code := Report(zerolog.New(&buf), api.Outcome{Kind: api.OutcomeSucceeded})
	assert.Equal(t, api.ExitOK, code)

	recs := decodeRecords(t, &buf)
	require.Len(t, recs, 1)
	assert.NotContains(t, recs[0], "output")
}

func TestReport_DryRun(t *testing.T) {
	var buf bytes.Buffer
	code := Report(zerolog.New(&buf), api.Outcome{Kind: api.OutcomeDryRunSkipped})
	assert.Equal(t, api.ExitOK, code)

	recs := decodeRecords(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, false, recs[0]["data_moved"])
	assert.NotContains(t, recs[0], "output")
}

func TestReport_ExitCodes(t *testing.T) {
	cause := errors.New("boom")
	cases := []struct {
		err   error
		code  int
		class string
	}{
		{&api.ConfigurationError{Field: api.FieldDestinationContainer}, api.ExitConfiguration, "configuration"},
		{&api.StorageUnavailableError{Account: "a", Err: cause}, api.ExitStorageUnavailable, "storage"},
		{&api.EndpointUnreachableError{Endpoint: "e", Err: cause}, api.ExitEndpointUnreachable, "endpoint"},
		{&api.AuthenticationError{Endpoint: "e"}, api.ExitAuthentication, "authentication"},
		{&api.RemoteExportError{Code: "X"}, api.ExitRemoteExport, "remote"},
		{cause, api.ExitUnknown, "unknown"},
		{nil, api.ExitUnknown, "unknown"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		code := Report(zerolog.New(&buf), api.Outcome{Kind: api.OutcomeFailed, Stage: api.StageInvoking, Err: tc.err})
		assert.Equal(t, tc.code, code, "%v", tc.err)

		recs := decodeRecords(t, &buf)
		require.Len(t, recs, 1)
		assert.Equal(t, "error", recs[0]["level"])
		assert.Equal(t, tc.class, recs[0]["class"])
		assert.Equal(t, "invoking", recs[0]["stage"])
	}
}

type panicWriter struct{}

func (panicWriter) Write([]byte) (int, error) { panic("writer exploded") }

func TestReport_NeverPanics(t *testing.T) {
	assert.NotPanics(t, func() {
		code := Report(zerolog.New(panicWriter{}), api.Outcome{Kind: api.OutcomeSucceeded})
		assert.Equal(t, api.ExitUnknown, code)
	})

	assert.NotPanics(t, func() {
		code := Report(zerolog.New(panicWriter{}), api.Outcome{Kind: api.OutcomeFailed, Err: errors.New("x")})
		assert.Equal(t, api.ExitUnknown, code)
	})
}
