package core

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sockerless/dbexport/api"
)

// ErrorClass names the failure category of err: configuration, storage,
// endpoint, authentication, remote or unknown.
func ErrorClass(err error) string {
	var (
		cfgErr  *api.ConfigurationError
		stErr   *api.StorageUnavailableError
		epErr   *api.EndpointUnreachableError
		authErr *api.AuthenticationError
		remErr  *api.RemoteExportError
	)
	switch {
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.As(err, &stErr):
		return "storage"
	case errors.As(err, &epErr):
		return "endpoint"
	case errors.As(err, &authErr):
		return "authentication"
	case errors.As(err, &remErr):
		return "remote"
	}
	return "unknown"
}

// ExitCode maps an outcome to a process exit code.
func ExitCode(o api.Outcome) int {
	if o.Kind != api.OutcomeFailed {
		return api.ExitOK
	}
	var ec api.ExitCoder
	if errors.As(o.Err, &ec) {
		return ec.ExitCode()
	}
	return api.ExitUnknown
}

// Report writes the single terminal record for an outcome and returns the
// exit code. It never panics.
func Report(logger zerolog.Logger, o api.Outcome) (code int) {
	defer func() {
		if r := recover(); r != nil {
			code = api.ExitUnknown
			func() {
				defer func() { recover() }()
				logger.Error().Str("panic", fmt.Sprint(r)).Msg("export failed")
			}()
		}
	}()

	switch o.Kind {
	case api.OutcomeSucceeded:
		ev := logger.Info().Str("outcome", o.Kind.String())
		if o.ArtifactAddress != "" {
			ev = ev.Str("output", o.ArtifactAddress)
		}
		ev.Msg("*** EXPORT COMPLETE ***")
	case api.OutcomeDryRunSkipped:
		logger.Info().
			Str("outcome", o.Kind.String()).
			Bool("data_moved", false).
			Msg("*** EXPORT COMPLETE *** (what-if: no data was moved)")
	default:
		err := o.Err
		if err == nil {
			err = errors.New("export failed without a reason")
		}
		logger.Error().
			Err(err).
			Str("outcome", api.OutcomeFailed.String()).
			Str("stage", string(o.Stage)).
			Str("class", ErrorClass(err)).
			Msg("export failed")
	}
	return ExitCode(o)
}
