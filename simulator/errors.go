package simulator

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/sockerless/dbexport/dac"
)

// StorageErrorResponse is the Blob service XML error body.
type StorageErrorResponse struct {
	XMLName xml.Name `xml:"Error"`
	Code    string   `xml:"Code"`
	Message string   `xml:"Message"`
}

// StorageError writes a Blob service error. The code is also sent in the
// x-ms-error-code header, which is what the SDK reads first.
func StorageError(w http.ResponseWriter, code string, message string, statusCode int) {
	w.Header().Set("x-ms-error-code", code)
	WriteXML(w, statusCode, StorageErrorResponse{Code: code, Message: message})
}

// AzureError writes an Azure ARM-style JSON error response.
//
// Azure error format:
//
//	{"error": {"code": "ResourceNotFound", "message": "details"}}
func AzureError(w http.ResponseWriter, code string, message string, statusCode int) {
	w.Header().Set("x-ms-error-code", code)
	WriteJSON(w, statusCode, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// AzureErrorf writes an Azure-style error with a formatted message.
func AzureErrorf(w http.ResponseWriter, code string, statusCode int, format string, args ...any) {
	AzureError(w, code, fmt.Sprintf(format, args...), statusCode)
}

// DACFault writes an import/export service fault.
func DACFault(w http.ResponseWriter, code string, message string, statusCode int) {
	WriteXML(w, statusCode, dac.Fault{Code: code, Message: message})
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// WriteXML writes an XML response with the given status code.
func WriteXML(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(statusCode)
	w.Write([]byte(xml.Header))
	xml.NewEncoder(w).Encode(v)
}
