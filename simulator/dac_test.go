package simulator

import (
	"encoding/xml"
	"net/http"
	"net/url"
	"testing"

	"github.com/sockerless/dbexport/dac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportBody(t *testing.T, blobURI, key, user, password string) string {
	t.Helper()
	in := dac.ExportInput{
		BlobCredentials: dac.BlobCredentials{URI: blobURI, StorageAccessKey: key},
		ConnectionInfo: dac.ConnectionInfo{
			DatabaseName: "orders",
			ServerName:   "myserver.example",
			UserName:     user,
			Password:     password,
		},
	}
	data, err := xml.Marshal(in)
	require.NoError(t, err)
	return string(data)
}

func submit(t *testing.T, ts string, body string) string {
	t.Helper()
	resp, data := do(t, http.MethodPost, ts+"/dac/Export", "", body)
	require.Equal(t, http.StatusOK, resp.StatusCode, data)
	var g dac.GUID
	require.NoError(t, xml.Unmarshal([]byte(data), &g))
	require.NotEmpty(t, g.Value)
	return g.Value
}

func status(t *testing.T, ts, id, user, password string) (*http.Response, dac.StatusList) {
	t.Helper()
	q := url.Values{}
	q.Set("servername", "myserver.example")
	q.Set("username", user)
	q.Set("password", password)
	q.Set("reqId", id)
	resp, data := do(t, http.MethodGet, ts+"/dac/Status?"+q.Encode(), "", "")
	var list dac.StatusList
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, xml.Unmarshal([]byte(data), &list))
	}
	return resp, list
}

func TestExport_CompletesAndWritesBlob(t *testing.T) {
	s, ts := newTestServer(t, Config{CompleteAfter: 2})
	do(t, http.MethodPut, ts.URL+"/devstoreaccount1/exports?restype=container", sharedKey, "")

	blobURI := ts.URL + "/devstoreaccount1/exports/orders.bacpac"
	id := submit(t, ts.URL, exportBody(t, blobURI, DefaultAccountKey, "admin", "pw"))
	assert.Equal(t, 1, s.ExportCount())

	_, list := status(t, ts.URL, id, "admin", "pw")
	require.Len(t, list.Items, 1)
	assert.Contains(t, list.Items[0].Status, dac.StatusRunning)
	assert.Empty(t, list.Items[0].BlobURI)

	_, list = status(t, ts.URL, id, "admin", "pw")
	assert.Contains(t, list.Items[0].Status, dac.StatusRunning)

	_, list = status(t, ts.URL, id, "admin", "pw")
	assert.Equal(t, dac.StatusCompleted, list.Items[0].Status)
	assert.Equal(t, blobURI, list.Items[0].BlobURI)
	assert.Equal(t, id, list.Items[0].RequestID)

	data, ok := s.BlobData("exports", "orders.bacpac")
	require.True(t, ok)
	assert.Equal(t, "PK\x03\x04", string(data[:4]))

	resp, body := do(t, http.MethodGet, blobURI, sharedKey, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(data), body)
}

func TestExport_FailureConditions(t *testing.T) {
	cases := []struct {
		name      string
		container bool
		key       string
		user      string
		want      string
	}{
		{"login", true, DefaultAccountKey, "intruder", "Login failed for user 'intruder'."},
		{"storage key", true, "d3Jvbmc=", "admin", "(403) Forbidden"},
		{"missing container", false, DefaultAccountKey, "admin", "(404) Not Found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, ts := newTestServer(t, Config{SQLUser: "admin", SQLPassword: "pw"})
			if tc.container {
				do(t, http.MethodPut, ts.URL+"/devstoreaccount1/exports?restype=container", sharedKey, "")
			}
			id := submit(t, ts.URL, exportBody(t, ts.URL+"/devstoreaccount1/exports/orders.bacpac", tc.key, tc.user, "pw"))

			_, list := status(t, ts.URL, id, tc.user, "pw")
			require.Len(t, list.Items, 1)
			assert.Equal(t, dac.StatusFailed, list.Items[0].Status)
			assert.Contains(t, list.Items[0].ErrorMessage, tc.want)

			_, ok := s.BlobData("exports", "orders.bacpac")
			assert.False(t, ok)
		})
	}
}

func TestExport_BadRequest(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	resp, body := do(t, http.MethodPost, ts.URL+"/dac/Export", "", "not xml")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "InvalidRequest")

	resp, _ = do(t, http.MethodPost, ts.URL+"/dac/Export", "", exportBody(t, "", DefaultAccountKey, "admin", "pw"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatus_CredentialsMustMatch(t *testing.T) {
	_, ts := newTestServer(t, Config{})
	do(t, http.MethodPut, ts.URL+"/devstoreaccount1/exports?restype=container", sharedKey, "")
	id := submit(t, ts.URL, exportBody(t, ts.URL+"/devstoreaccount1/exports/orders.bacpac", DefaultAccountKey, "admin", "pw"))

	resp, _ := status(t, ts.URL, id, "admin", "wrong")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, list := status(t, ts.URL, "00000000-0000-0000-0000-000000000000", "admin", "pw")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, list.Items)
}
