package simulator

import (
	"fmt"
	"net/http"
	"regexp"
	"time"
)

// Container is a simulated blob container.
type Container struct {
	Name    string
	Created time.Time
	ETag    string
}

// Blob is a simulated block blob.
type Blob struct {
	Container string
	Name      string
	Data      []byte
	Modified  time.Time
}

var containerNameRE = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9]|-[a-z0-9]){2,62}$`)

func blobKey(container, name string) string {
	return container + "/" + name
}

// ContainerExists reports whether the container has been created.
func (s *Server) ContainerExists(name string) bool {
	_, ok := s.containers.Get(name)
	return ok
}

// ContainerCount returns the number of containers.
func (s *Server) ContainerCount() int {
	return s.containers.Len()
}

// BlobData returns the content of a blob.
func (s *Server) BlobData(container, name string) ([]byte, bool) {
	b, ok := s.blobs.Get(blobKey(container, name))
	if !ok {
		return nil, false
	}
	return b.Data, true
}

func (s *Server) registerStorage() {
	// Path-style addressing: /{account}/{container}[/{blob}]
	s.mux.HandleFunc("PUT /{account}/{container}", func(w http.ResponseWriter, r *http.Request) {
		account := r.PathValue("account")
		name := r.PathValue("container")
		if !s.authorizeBlob(w, r, account) {
			return
		}
		if r.URL.Query().Get("restype") != "container" {
			StorageError(w, "UnsupportedQueryParameter", "only restype=container is supported on this path", http.StatusBadRequest)
			return
		}
		if !containerNameRE.MatchString(name) {
			StorageError(w, "InvalidResourceName", "The specifed resource name contains invalid characters.", http.StatusBadRequest)
			return
		}

		now := time.Now().UTC()
		c := Container{Name: name, Created: now, ETag: fmt.Sprintf("\"0x%X\"", now.UnixNano())}
		if !s.containers.PutIfAbsent(name, c) {
			StorageError(w, "ContainerAlreadyExists", "The specified container already exists.", http.StatusConflict)
			return
		}
		s.logger.Debug().Str("container", name).Msg("container created")

		w.Header().Set("ETag", c.ETag)
		w.Header().Set("Last-Modified", now.Format(http.TimeFormat))
		w.Header().Set("x-ms-version", r.Header.Get("x-ms-version"))
		w.WriteHeader(http.StatusCreated)
	})

	s.mux.HandleFunc("GET /{account}/{container}/{blob...}", func(w http.ResponseWriter, r *http.Request) {
		account := r.PathValue("account")
		container := r.PathValue("container")
		if !s.authorizeBlob(w, r, account) {
			return
		}
		if !s.ContainerExists(container) {
			StorageError(w, "ContainerNotFound", "The specified container does not exist.", http.StatusNotFound)
			return
		}
		b, ok := s.blobs.Get(blobKey(container, r.PathValue("blob")))
		if !ok {
			StorageError(w, "BlobNotFound", "The specified blob does not exist.", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(b.Data)))
		w.Header().Set("Last-Modified", b.Modified.Format(http.TimeFormat))
		w.Header().Set("x-ms-blob-type", "BlockBlob")
		w.WriteHeader(http.StatusOK)
		w.Write(b.Data)
	})
}

// authorizeBlob rejects requests for other accounts and requests not signed
// with the account's shared key.
func (s *Server) authorizeBlob(w http.ResponseWriter, r *http.Request, account string) bool {
	if account != s.config.AccountName {
		StorageError(w, "AuthenticationFailed", fmt.Sprintf("Unknown storage account %q.", account), http.StatusForbidden)
		return false
	}
	if id := Identity(r.Context()); id != account {
		StorageError(w, "AuthenticationFailed", "Server failed to authenticate the request.", http.StatusForbidden)
		return false
	}
	return true
}

func (s *Server) registerStorageARM() {
	const armBase = "/subscriptions/{subscriptionId}/resourceGroups/{resourceGroupName}/providers/Microsoft.Storage"

	s.mux.HandleFunc("POST "+armBase+"/storageAccounts/{accountName}/listKeys", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("accountName")
		if name != s.config.AccountName {
			AzureErrorf(w, "ResourceNotFound", http.StatusNotFound,
				"The Resource 'Microsoft.Storage/storageAccounts/%s' under resource group '%s' was not found.",
				name, r.PathValue("resourceGroupName"))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"keys": []map[string]string{
				{"keyName": "key1", "value": s.config.AccountKey, "permissions": "Full"},
			},
		})
	})
}
