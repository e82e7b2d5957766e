package core

import "github.com/sockerless/dbexport/api"

// Resolve fills an empty destination storage account and an empty export
// endpoint from env. Values already set on cfg are never overwritten, and a
// nil env leaves cfg unchanged.
func Resolve(cfg api.ExportConfiguration, env *api.EnvironmentDefaults) api.ExportConfiguration {
	if env == nil {
		return cfg
	}
	if cfg.Storage.IsZero() {
		cfg.Storage = env.BackupStorage
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = env.SqlDacEndpoint
	}
	return cfg
}
