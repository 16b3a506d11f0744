// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory is one secret: the filename is the key name and
// the file contents (trimmed) are the value.
//
// Supported key files: bioportal-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BioPortalKeyFile is the secret filename holding the BioPortal API key.
const BioPortalKeyFile = "bioportal-api-key"

// bioportalKeyEnv overrides the file-based key when set.
const bioportalKeyEnv = "ONTOMAP_BIOPORTAL_API_KEY"

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory or missing files are not errors; Load
// returns an empty map. Unreadable files produce a warning on stderr but do
// not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// BioPortalAPIKey resolves the BioPortal API key: the environment variable
// ONTOMAP_BIOPORTAL_API_KEY wins, then the bioportal-api-key file in dir.
// Returns the empty string when neither is set.
func BioPortalAPIKey(dir string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(bioportalKeyEnv)); v != "" {
		return v, nil
	}
	loaded, err := Load(dir)
	if err != nil {
		return "", err
	}
	return loaded[BioPortalKeyFile], nil
}
