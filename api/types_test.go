package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageAccount_ExportKey(t *testing.T) {
	acct := StorageAccount{Name: "acct1", Key: "c2VjcmV0LWtleQ=="}

	raw, err := acct.ExportKey()
	require.NoError(t, err)
	assert.Equal(t, []byte("secret-key"), raw)

	b64, err := acct.Base64ExportKey()
	require.NoError(t, err)
	assert.Equal(t, acct.Key, b64)
}

func TestStorageAccount_ExportKeyErrors(t *testing.T) {
	_, err := StorageAccount{Name: "acct1"}.ExportKey()
	assert.ErrorContains(t, err, "no access key")

	_, err = StorageAccount{Name: "acct1", Key: "not base64!"}.Base64ExportKey()
	assert.ErrorContains(t, err, "not valid base64")
}

func TestOutcomeKindString(t *testing.T) {
	assert.Equal(t, "succeeded", OutcomeSucceeded.String())
	assert.Equal(t, "dry-run-skipped", OutcomeDryRunSkipped.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "unknown", OutcomeKind(42).String())
}

func TestErrorExitCodes(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	cases := []struct {
		err  error
		code int
	}{
		{&ConfigurationError{Field: FieldDestinationContainer}, ExitConfiguration},
		{&StorageUnavailableError{Account: "a", Container: "c", Err: cause}, ExitStorageUnavailable},
		{&EndpointUnreachableError{Endpoint: "https://dac", Err: cause}, ExitEndpointUnreachable},
		{&AuthenticationError{Endpoint: "https://dac"}, ExitAuthentication},
		{&RemoteExportError{Code: "X", Message: "boom"}, ExitRemoteExport},
	}
	for _, tc := range cases {
		var ec ExitCoder
		require.True(t, errors.As(tc.err, &ec), "%T", tc.err)
		assert.Equal(t, tc.code, ec.ExitCode(), "%T", tc.err)
	}

	assert.ErrorIs(t, &StorageUnavailableError{Err: cause}, cause)
	assert.ErrorIs(t, &EndpointUnreachableError{Err: cause}, cause)
	assert.Equal(t, "missing required parameter DestinationContainer",
		(&ConfigurationError{Field: FieldDestinationContainer}).Error())
}
