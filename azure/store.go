package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/rs/zerolog"
	"github.com/sockerless/dbexport/api"
)

// Opener opens shared-key blob stores, looking up missing account keys
// through ARM when configured.
type Opener struct {
	config   Config
	accounts *armAccounts
	logger   zerolog.Logger
}

// NewOpener creates an Opener. clients may be nil.
func NewOpener(config Config, clients *Clients, logger zerolog.Logger) *Opener {
	o := &Opener{config: config, logger: logger}
	if clients != nil && clients.Accounts != nil {
		o.accounts = &armAccounts{client: clients.Accounts, resourceGroup: config.ResourceGroup}
	}
	return o
}

// OpenStore implements api.StoreOpener.
func (o *Opener) OpenStore(ctx context.Context, account api.StorageAccount) (api.BlobStore, error) {
	if account.Key == "" {
		if o.accounts == nil {
			return nil, &api.ConfigurationError{
				Field:  api.FieldDestinationStorage,
				Reason: "no AccountKey given and ARM key lookup is not configured",
			}
		}
		key, err := o.accounts.primaryKey(ctx, account.Name)
		if err != nil {
			return nil, mapStorageError(err, account.Name, "")
		}
		o.logger.Debug().Str("account", account.Name).Msg("resolved storage account key from ARM")
		account.Key = key
	}

	cred, err := azblob.NewSharedKeyCredential(account.Name, account.Key)
	if err != nil {
		return nil, &api.ConfigurationError{Field: api.FieldDestinationStorage, Reason: err.Error()}
	}
	client, err := azblob.NewClientWithSharedKeyCredential(account.ServiceURL(), cred, &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{MaxRetries: o.config.MaxRetries},
		},
	})
	if err != nil {
		return nil, mapStorageError(fmt.Errorf("create blob client: %w", err), account.Name, "")
	}
	return &BlobStore{account: account, client: client, logger: o.logger}, nil
}

// BlobStore is a blob service client bound to one account.
type BlobStore struct {
	account api.StorageAccount
	client  *azblob.Client
	logger  zerolog.Logger
}

// Account returns the account with its resolved key.
func (s *BlobStore) Account() api.StorageAccount {
	return s.account
}

// EnsureContainer creates the container, treating ContainerAlreadyExists as success.
func (s *BlobStore) EnsureContainer(ctx context.Context, name string) error {
	_, err := s.client.CreateContainer(ctx, name, nil)
	switch {
	case err == nil:
		s.logger.Debug().Str("container", name).Msg("created container")
		return nil
	case bloberror.HasCode(err, bloberror.ContainerAlreadyExists):
		return nil
	default:
		return mapStorageError(err, s.account.Name, name)
	}
}

// BlobURL returns the block blob URL for container/blob.
func (s *BlobStore) BlobURL(container, blob string) string {
	return s.client.ServiceClient().NewContainerClient(container).NewBlockBlobClient(blob).URL()
}
