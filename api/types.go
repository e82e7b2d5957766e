package api

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// BacpacSuffix is appended to the database name to form the blob name.
const BacpacSuffix = ".bacpac"

// SQLCredentials holds the SQL login used by the export service.
type SQLCredentials struct {
	User     string
	Password string
}

// SourceDatabase identifies the database to export.
type SourceDatabase struct {
	Server      string // as given, possibly with a transport prefix such as "tcp:"
	Database    string
	Credentials SQLCredentials
}

// StorageAccount identifies the destination storage account and its
// access key material.
type StorageAccount struct {
	Name         string
	Key          string // base64 account key, may be empty until looked up
	BlobEndpoint string
}

// IsZero reports whether no account was supplied.
func (a StorageAccount) IsZero() bool {
	return a.Name == "" && a.BlobEndpoint == ""
}

// ServiceURL returns the blob service URL for the account.
func (a StorageAccount) ServiceURL() string {
	if a.BlobEndpoint != "" {
		return strings.TrimRight(a.BlobEndpoint, "/") + "/"
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/", a.Name)
}

// ExportKey returns the raw key bytes handed to the export service.
func (a StorageAccount) ExportKey() ([]byte, error) {
	if a.Key == "" {
		return nil, fmt.Errorf("storage account %s has no access key", a.Name)
	}
	key, err := base64.StdEncoding.DecodeString(a.Key)
	if err != nil {
		return nil, fmt.Errorf("storage account %s key is not valid base64: %w", a.Name, err)
	}
	return key, nil
}

// Base64ExportKey returns ExportKey encoded as standard base64.
func (a StorageAccount) Base64ExportKey() (string, error) {
	key, err := a.ExportKey()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// ExportConfiguration is the full set of parameters for one export run.
type ExportConfiguration struct {
	Source    SourceDatabase
	Storage   StorageAccount
	Container string
	Endpoint  string
	DryRun    bool
}

// EnvironmentDefaults is a named profile supplying fallback values.
type EnvironmentDefaults struct {
	Name           string
	BackupStorage  StorageAccount
	SqlDacEndpoint string
}

// ExportTarget is the prepared destination for one run.
type ExportTarget struct {
	Store     BlobStore
	Container string
	Blob      string
	Address   string
}

// ExportRequest is what gets sent to the export service.
type ExportRequest struct {
	Endpoint     string
	DatabaseName string
	ServerName   string
	UserName     string
	Password     string
	BlobURI      string
	StorageKey   string // base64
	DryRun       bool
}

// Stage names a step of the export pipeline.
type Stage string

const (
	StageIdle            Stage = "idle"
	StageValidating      Stage = "validating"
	StagePreparingTarget Stage = "preparing-target"
	StageInvoking        Stage = "invoking"
	StageSucceeded       Stage = "succeeded"
	StageDryRunCompleted Stage = "dry-run-completed"
	StageFailed          Stage = "failed"
)

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	OutcomeSucceeded OutcomeKind = iota
	OutcomeDryRunSkipped
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeDryRunSkipped:
		return "dry-run-skipped"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the terminal result of a run.
type Outcome struct {
	Kind            OutcomeKind
	ArtifactAddress string // only set for OutcomeSucceeded, may be empty
	Stage           Stage  // stage that failed, for OutcomeFailed
	Err             error
}
