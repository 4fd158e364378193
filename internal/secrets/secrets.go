// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads publisher credentials from a directory of plain-text
// files. Each file holds one secret: the filename is the key and the trimmed
// contents are the value.
//
// Recognized files: aws-access-key-id, aws-secret-access-key, aws-session-token.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Key names understood by the S3 publisher.
const (
	AWSAccessKeyID     = "aws-access-key-id"
	AWSSecretAccessKey = "aws-secret-access-key"
	AWSSessionToken    = "aws-session-token"
)

// Set maps secret names to values.
type Set map[string]string

// Load reads every regular file in dir. A missing directory yields an empty
// set. Files that cannot be read are logged and skipped.
func Load(dir string, logger *zap.Logger) (Set, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	set := make(Set)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("skipping unreadable secret", zap.String("name", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			set[name] = value
		}
	}
	return set, nil
}

// AWS returns the static key pair and optional session token. ok is false
// unless both the key id and the secret are present.
func (s Set) AWS() (id, secret, token string, ok bool) {
	id, secret, token = s[AWSAccessKeyID], s[AWSSecretAccessKey], s[AWSSessionToken]
	return id, secret, token, id != "" && secret != ""
}
