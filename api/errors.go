package api

import "fmt"

// Exit codes returned by the export command.
const (
	ExitOK                  = 0
	ExitUnknown             = 1
	ExitConfiguration       = 2
	ExitStorageUnavailable  = 3
	ExitEndpointUnreachable = 4
	ExitAuthentication      = 5
	ExitRemoteExport        = 6
)

// ExitCoder is implemented by errors that map to a process exit code.
type ExitCoder interface {
	ExitCode() int
}

// Required configuration fields, in validation order.
const (
	FieldDestinationStorage   = "DestinationStorage"
	FieldSqlDacEndpoint       = "SqlDacEndpoint"
	FieldDestinationContainer = "DestinationContainer"
	FieldDatabaseName         = "DatabaseName"
	FieldSourceServer         = "SourceServer"
)

// ConfigurationError indicates a missing or invalid required parameter.
// It is always raised before any network or storage call.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing required parameter %s", e.Field)
	}
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) ExitCode() int {
	return ExitConfiguration
}

// StorageUnavailableError indicates the destination store could not be
// reached, or refused the container operation.
type StorageUnavailableError struct {
	Account   string
	Container string
	Err       error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage account %s unavailable (container %s): %v", e.Account, e.Container, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

func (e *StorageUnavailableError) ExitCode() int {
	return ExitStorageUnavailable
}

// EndpointUnreachableError indicates the export service could not be contacted.
type EndpointUnreachableError struct {
	Endpoint string
	Err      error
}

func (e *EndpointUnreachableError) Error() string {
	return fmt.Sprintf("export endpoint %s unreachable: %v", e.Endpoint, e.Err)
}

func (e *EndpointUnreachableError) Unwrap() error {
	return e.Err
}

func (e *EndpointUnreachableError) ExitCode() int {
	return ExitEndpointUnreachable
}

// AuthenticationError indicates the export service rejected the credentials.
type AuthenticationError struct {
	Endpoint string
	Message  string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("export endpoint %s rejected the credentials", e.Endpoint)
	}
	return fmt.Sprintf("export endpoint %s rejected the credentials: %s", e.Endpoint, e.Message)
}

func (e *AuthenticationError) ExitCode() int {
	return ExitAuthentication
}

// RemoteExportError indicates the export service reported a fault.
type RemoteExportError struct {
	Code    string
	Message string
}

func (e *RemoteExportError) Error() string {
	if e.Code == "" {
		return "remote export failed: " + e.Message
	}
	return fmt.Sprintf("remote export failed (%s): %s", e.Code, e.Message)
}

func (e *RemoteExportError) ExitCode() int {
	return ExitRemoteExport
}
