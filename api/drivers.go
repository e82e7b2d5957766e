package api

import "context"

// BlobStore is the destination object store for one storage account.
type BlobStore interface {
	// Account returns the account, including key material once resolved.
	Account() StorageAccount
	// EnsureContainer creates the container if it does not exist.
	EnsureContainer(ctx context.Context, name string) error
	// BlobURL returns the address of a blob. It performs no I/O.
	BlobURL(container, blob string) string
}

// StoreOpener opens a BlobStore for an account.
type StoreOpener interface {
	OpenStore(ctx context.Context, account StorageAccount) (BlobStore, error)
}

// Exporter submits an export to the remote export service. It returns the
// artifact address reported by the service, which may be empty.
type Exporter interface {
	Export(ctx context.Context, req ExportRequest) (string, error)
}
