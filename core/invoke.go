package core

import (
	"context"
	"strings"

	"github.com/sockerless/dbexport/api"
)

// serverTransportPrefixes are the SQL Server protocol tags that may lead a
// data source ("tcp:host,1433", "np:\\host\pipe\sql\query").
var serverTransportPrefixes = []string{"tcp:", "np:", "lpc:", "admin:"}

// StripServerScheme removes a leading transport tag from a server address.
func StripServerScheme(server string) string {
	lower := strings.ToLower(server)
	for _, p := range serverTransportPrefixes {
		if strings.HasPrefix(lower, p) {
			return server[len(p):]
		}
	}
	return server
}

// BuildExportRequest assembles the request sent to the export service.
func BuildExportRequest(cfg api.ExportConfiguration, target api.ExportTarget) (api.ExportRequest, error) {
	account := target.Store.Account()
	key, err := account.Base64ExportKey()
	if err != nil {
		return api.ExportRequest{}, &api.ConfigurationError{Field: api.FieldDestinationStorage, Reason: err.Error()}
	}
	return api.ExportRequest{
		Endpoint:     cfg.Endpoint,
		DatabaseName: cfg.Source.Database,
		ServerName:   StripServerScheme(cfg.Source.Server),
		UserName:     cfg.Source.Credentials.User,
		Password:     cfg.Source.Credentials.Password,
		BlobURI:      target.Address,
		StorageKey:   key,
		DryRun:       cfg.DryRun,
	}, nil
}

// invokeExport calls the exporter exactly once. A dry run never yields an
// artifact address.
func invokeExport(ctx context.Context, exporter api.Exporter, req api.ExportRequest) (string, error) {
	addr, err := exporter.Export(ctx, req)
	if err != nil {
		return "", err
	}
	if req.DryRun {
		return "", nil
	}
	return addr, nil
}
