package core

import (
	"encoding/base64"
	"net/url"

	"github.com/sockerless/dbexport/api"
)

// Validate checks the required fields of a resolved configuration in a fixed
// order and returns a *api.ConfigurationError for the first one that is
// missing or malformed. It performs no I/O.
func Validate(cfg api.ExportConfiguration) (api.ExportConfiguration, error) {
	if cfg.Storage.IsZero() {
		return cfg, &api.ConfigurationError{Field: api.FieldDestinationStorage}
	}
	if cfg.Storage.Name == "" {
		return cfg, &api.ConfigurationError{Field: api.FieldDestinationStorage, Reason: "account name is empty"}
	}
	if cfg.Storage.Key != "" {
		if _, err := base64.StdEncoding.DecodeString(cfg.Storage.Key); err != nil {
			return cfg, &api.ConfigurationError{Field: api.FieldDestinationStorage, Reason: "account key is not valid base64"}
		}
	}

	if cfg.Endpoint == "" {
		return cfg, &api.ConfigurationError{Field: api.FieldSqlDacEndpoint}
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return cfg, &api.ConfigurationError{Field: api.FieldSqlDacEndpoint, Reason: "must be an absolute http(s) URL"}
	}

	if cfg.Container == "" {
		return cfg, &api.ConfigurationError{Field: api.FieldDestinationContainer}
	}

	if cfg.Source.Database == "" {
		return cfg, &api.ConfigurationError{Field: api.FieldDatabaseName}
	}

	if cfg.Source.Server == "" {
		return cfg, &api.ConfigurationError{Field: api.FieldSourceServer}
	}
	if StripServerScheme(cfg.Source.Server) == "" {
		return cfg, &api.ConfigurationError{Field: api.FieldSourceServer, Reason: "transport prefix without a host"}
	}
	return cfg, nil
}
