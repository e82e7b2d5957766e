package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
)

type armAccounts struct {
	client        *armstorage.AccountsClient
	resourceGroup string
}

// primaryKey returns the first key with full permissions, falling back to
// the first non-empty key.
func (a *armAccounts) primaryKey(ctx context.Context, account string) (string, error) {
	resp, err := a.client.ListKeys(ctx, a.resourceGroup, account, nil)
	if err != nil {
		return "", err
	}
	var fallback string
	for _, k := range resp.Keys {
		if k == nil || k.Value == nil || *k.Value == "" {
			continue
		}
		if k.Permissions != nil && *k.Permissions == armstorage.KeyPermissionFull {
			return *k.Value, nil
		}
		if fallback == "" {
			fallback = *k.Value
		}
	}
	if fallback == "" {
		return "", fmt.Errorf("storage account %s has no access keys", account)
	}
	return fallback, nil
}
