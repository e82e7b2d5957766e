package azure

import (
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/sockerless/dbexport/api"
)

// mapStorageError converts an Azure SDK failure into a StorageUnavailableError.
func mapStorageError(err error, account, container string) error {
	if err == nil {
		return nil
	}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		code := respErr.ErrorCode
		if code == "" {
			code = "UnknownError"
		}
		err = fmt.Errorf("%s (HTTP %d)", code, respErr.StatusCode)
	}
	return &api.StorageUnavailableError{Account: account, Container: container, Err: err}
}
