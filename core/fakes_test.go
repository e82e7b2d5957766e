package core

import (
	"context"

	"github.com/sockerless/dbexport/api"
)

type fakeStore struct {
	account     api.StorageAccount
	base        string
	containers  map[string]bool
	ensureErr   error
	ensureCalls int
}

func (s *fakeStore) Account() api.StorageAccount { return s.account }

func (s *fakeStore) EnsureContainer(_ context.Context, name string) error {
	s.ensureCalls++
	if s.ensureErr != nil {
		return s.ensureErr
	}
	s.containers[name] = true
	return nil
}

func (s *fakeStore) BlobURL(container, blob string) string {
	return s.base + container + "/" + blob
}

type fakeOpener struct {
	store *fakeStore
	err   error
	calls int
}

func newFakeOpener(base string) *fakeOpener {
	return &fakeOpener{store: &fakeStore{base: base, containers: make(map[string]bool)}}
}

func (o *fakeOpener) OpenStore(_ context.Context, account api.StorageAccount) (api.BlobStore, error) {
	o.calls++
	if o.err != nil {
		return nil, o.err
	}
	o.store.account = account
	return o.store, nil
}

type fakeExporter struct {
	addr  string
	err   error
	calls int
	last  api.ExportRequest
}

func (e *fakeExporter) Export(_ context.Context, req api.ExportRequest) (string, error) {
	e.calls++
	e.last = req
	return e.addr, e.err
}

const testKey = "c2VjcmV0LWtleQ=="

func validConfig() api.ExportConfiguration {
	return api.ExportConfiguration{
		Source: api.SourceDatabase{
			Server:      "tcp:myserver.example",
			Database:    "orders",
			Credentials: api.SQLCredentials{User: "admin", Password: "secret"},
		},
		Storage:   api.StorageAccount{Name: "acct1", Key: testKey},
		Container: "exports",
		Endpoint:  "https://dac.example/DacWebService.svc",
	}
}
