package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sockerless/dbexport/api"
)

// environmentEntry is one profile as stored in environments.toml.
type environmentEntry struct {
	BackupStorage  string `toml:"backup_storage"`
	SqlDacEndpoint string `toml:"sql_dac_endpoint"`
}

type registryFile struct {
	Environments map[string]environmentEntry `toml:"environments"`
}

// Registry is the on-disk set of named environment profiles.
type Registry struct {
	path string
	envs map[string]environmentEntry
}

// HomeDir returns the dbexport state directory ($DBEXPORT_HOME or ~/.dbexport).
func HomeDir() string {
	if d := os.Getenv("DBEXPORT_HOME"); d != "" {
		return d
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".dbexport")
}

// RegistryPath returns the default registry file location.
func RegistryPath() string {
	return filepath.Join(HomeDir(), "environments.toml")
}

func activeFilePath() string {
	return filepath.Join(HomeDir(), "active")
}

// LoadRegistry reads the registry at path. A missing file yields an empty registry.
func LoadRegistry(path string) (*Registry, error) {
	r := &Registry{path: path, envs: make(map[string]environmentEntry)}
	var f registryFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return r, nil
		}
		return nil, fmt.Errorf("read environments %s: %w", path, err)
	}
	for name, e := range f.Environments {
		r.envs[name] = e
	}
	return r, nil
}

// Names returns the profile names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.envs))
	for name := range r.envs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named profile.
func (r *Registry) Lookup(name string) (*api.EnvironmentDefaults, error) {
	e, ok := r.envs[name]
	if !ok {
		return nil, fmt.Errorf("environment %q not found", name)
	}
	storage, err := api.ParseStorageAccount(e.BackupStorage)
	if err != nil {
		return nil, fmt.Errorf("environment %q: backup storage: %w", name, err)
	}
	return &api.EnvironmentDefaults{
		Name:           name,
		BackupStorage:  storage,
		SqlDacEndpoint: e.SqlDacEndpoint,
	}, nil
}

// Put adds or replaces a profile. The storage value must parse.
func (r *Registry) Put(name, backupStorage, sqlDacEndpoint string) error {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("invalid environment name %q", name)
	}
	if _, err := api.ParseStorageAccount(backupStorage); err != nil {
		return fmt.Errorf("backup storage: %w", err)
	}
	r.envs[name] = environmentEntry{BackupStorage: backupStorage, SqlDacEndpoint: sqlDacEndpoint}
	return nil
}

// Delete removes a profile. Returns true if it existed.
func (r *Registry) Delete(name string) bool {
	_, ok := r.envs[name]
	delete(r.envs, name)
	return ok
}

// Save writes the registry back to its file with owner-only permissions.
func (r *Registry) Save() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(registryFile{Environments: r.envs}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ActiveEnvironmentName returns DBEXPORT_ENVIRONMENT, or the name stored in
// the active file, or "" when neither is set.
func ActiveEnvironmentName() string {
	if name := os.Getenv("DBEXPORT_ENVIRONMENT"); name != "" {
		return name
	}
	data, err := os.ReadFile(activeFilePath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SetActiveEnvironment records name as the active profile.
func SetActiveEnvironment(name string) error {
	if err := os.MkdirAll(HomeDir(), 0o700); err != nil {
		return err
	}
	return os.WriteFile(activeFilePath(), []byte(name+"\n"), 0o644)
}

// ClearActiveEnvironment removes the active marker.
func ClearActiveEnvironment() error {
	err := os.Remove(activeFilePath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
