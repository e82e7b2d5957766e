package core

import (
	"context"
	"errors"

	"github.com/sockerless/dbexport/api"
)

// BlobName returns the destination blob name for a database.
func BlobName(database string) string {
	return database + api.BacpacSuffix
}

// PrepareTarget opens the destination store, creates the container when it
// is missing and computes the blob address. Existing containers are reused.
// Unclassified store failures are returned as *api.StorageUnavailableError.
func PrepareTarget(ctx context.Context, opener api.StoreOpener, cfg api.ExportConfiguration) (api.ExportTarget, error) {
	store, err := opener.OpenStore(ctx, cfg.Storage)
	if err != nil {
		return api.ExportTarget{}, storageError(cfg, err)
	}
	if err := store.EnsureContainer(ctx, cfg.Container); err != nil {
		return api.ExportTarget{}, storageError(cfg, err)
	}
	blob := BlobName(cfg.Source.Database)
	return api.ExportTarget{
		Store:     store,
		Container: cfg.Container,
		Blob:      blob,
		Address:   store.BlobURL(cfg.Container, blob),
	}, nil
}

// storageError keeps classified errors as they are and wraps anything else.
func storageError(cfg api.ExportConfiguration, err error) error {
	var ec api.ExitCoder
	if errors.As(err, &ec) {
		return err
	}
	return &api.StorageUnavailableError{Account: cfg.Storage.Name, Container: cfg.Container, Err: err}
}
