package azure

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
)

type fakeCredential struct{}

func (f *fakeCredential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "fake-token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

// Clients holds the Azure management clients. Accounts is nil when key
// lookup is not configured.
type Clients struct {
	Accounts *armstorage.AccountsClient
}

// NewClients initializes Azure SDK clients.
func NewClients(cfg Config) (*Clients, error) {
	if !cfg.KeyLookupEnabled() {
		return &Clients{}, nil
	}
	if cfg.EndpointURL != "" {
		return newClientsWithEndpoint(cfg.SubscriptionID, cfg.EndpointURL)
	}
	return newClientsDefault(cfg.SubscriptionID)
}

func newClientsWithEndpoint(subscriptionID string, endpointURL string) (*Clients, error) {
	opts := &arm.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Cloud: cloud.Configuration{
				Services: map[cloud.ServiceName]cloud.ServiceConfiguration{
					cloud.ResourceManager: {
						Endpoint: endpointURL,
						Audience: "https://management.azure.com/",
					},
				},
			},
			InsecureAllowCredentialWithHTTP: true,
		},
	}

	accounts, err := armstorage.NewAccountsClient(subscriptionID, &fakeCredential{}, opts)
	if err != nil {
		return nil, err
	}
	return &Clients{Accounts: accounts}, nil
}

func newClientsDefault(subscriptionID string) (*Clients, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}

	accounts, err := armstorage.NewAccountsClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, err
	}
	return &Clients{Accounts: accounts}, nil
}
