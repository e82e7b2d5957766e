// Package dac is a client for the SQL DAC import/export service, which
// exports a database to a .bacpac blob given the blob URI and the storage
// account key.
package dac

import "encoding/xml"

const (
	// ServiceTypesNamespace is the data contract namespace of the service's payloads.
	ServiceTypesNamespace = "http://schemas.datacontract.org/2004/07/Microsoft.SqlServer.Management.Dac.ServiceTypes"
	// SerializationNamespace is the namespace of the GUID returned by Export.
	SerializationNamespace = "http://schemas.microsoft.com/2003/10/Serialization/"

	xmlSchemaInstance = "http://www.w3.org/2001/XMLSchema-instance"
	accessKeyCredType = "BlobStorageAccessKeyCredentials"
)

// ExportInput is the body of POST {endpoint}/Export.
type ExportInput struct {
	XMLName         xml.Name        `xml:"http://schemas.datacontract.org/2004/07/Microsoft.SqlServer.Management.Dac.ServiceTypes ExportInput"`
	XSI             string          `xml:"xmlns:i,attr,omitempty"`
	BlobCredentials BlobCredentials `xml:"BlobCredentials"`
	ConnectionInfo  ConnectionInfo  `xml:"ConnectionInfo"`
}

// BlobCredentials carries the destination blob and the account key.
type BlobCredentials struct {
	Type             string `xml:"i:type,attr,omitempty"`
	URI              string `xml:"Uri"`
	StorageAccessKey string `xml:"StorageAccessKey"`
}

// ConnectionInfo identifies the source database and login.
type ConnectionInfo struct {
	DatabaseName string `xml:"DatabaseName"`
	Password     string `xml:"Password"`
	ServerName   string `xml:"ServerName"`
	UserName     string `xml:"UserName"`
}

// GUID is the Export response: the id of the queued request.
type GUID struct {
	XMLName xml.Name `xml:"http://schemas.microsoft.com/2003/10/Serialization/ guid"`
	Value   string   `xml:",chardata"`
}

// StatusInfo describes one import/export request.
type StatusInfo struct {
	BlobURI          string `xml:"BlobUri"`
	DatabaseName     string `xml:"DatabaseName"`
	ErrorMessage     string `xml:"ErrorMessage"`
	LastModifiedTime string `xml:"LastModifiedTime"`
	QueuedTime       string `xml:"QueuedTime"`
	RequestID        string `xml:"RequestId"`
	RequestType      string `xml:"RequestType"`
	ServerName       string `xml:"ServerName"`
	Status           string `xml:"Status"`
}

// StatusList is the Status response.
type StatusList struct {
	XMLName xml.Name     `xml:"http://schemas.datacontract.org/2004/07/Microsoft.SqlServer.Management.Dac.ServiceTypes ArrayOfStatusInfo"`
	Items   []StatusInfo `xml:"StatusInfo"`
}

// Fault is the error body returned by the service.
type Fault struct {
	XMLName xml.Name `xml:"Error"`
	Code    string   `xml:"Code"`
	Message string   `xml:"Message"`
}

// Request status values.
const (
	StatusPending   = "Pending"
	StatusRunning   = "Running"
	StatusCompleted = "Completed"
	StatusFailed    = "Failed"
)
