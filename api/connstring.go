package api

import (
	"fmt"
	"strings"
)

// ParseConnectionString splits a "Key=Value;Key=Value" connection string.
// Keys are lower-cased; values keep their case and may be quoted.
func ParseConnectionString(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid connection string segment %q (expected Key=Value)", part)
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
			v = v[1 : len(v)-1]
		}
		out[k] = v
	}
	return out, nil
}

func firstOf(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}

// ParseSQLConnection reads server, catalog and login from an ADO-style
// SQL Server connection string.
func ParseSQLConnection(s string) (SourceDatabase, error) {
	m, err := ParseConnectionString(s)
	if err != nil {
		return SourceDatabase{}, err
	}
	return SourceDatabase{
		Server:   firstOf(m, "data source", "server", "address", "addr", "network address"),
		Database: firstOf(m, "initial catalog", "database"),
		Credentials: SQLCredentials{
			User:     firstOf(m, "user id", "uid", "user"),
			Password: firstOf(m, "password", "pwd"),
		},
	}, nil
}

// ParseStorageAccount reads an Azure storage connection string. A value
// without '=' is taken as a bare account name whose key is looked up later.
func ParseStorageAccount(s string) (StorageAccount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return StorageAccount{}, nil
	}
	if !strings.Contains(s, "=") {
		return StorageAccount{Name: s}, nil
	}
	m, err := ParseConnectionString(s)
	if err != nil {
		return StorageAccount{}, err
	}
	acct := StorageAccount{
		Name:         m["accountname"],
		Key:          m["accountkey"],
		BlobEndpoint: m["blobendpoint"],
	}
	if acct.Name == "" {
		return StorageAccount{}, fmt.Errorf("storage connection string has no AccountName")
	}
	if acct.BlobEndpoint == "" {
		if suffix := m["endpointsuffix"]; suffix != "" {
			proto := m["defaultendpointsprotocol"]
			if proto == "" {
				proto = "https"
			}
			acct.BlobEndpoint = fmt.Sprintf("%s://%s.blob.%s/", proto, acct.Name, suffix)
		}
	}
	return acct, nil
}
