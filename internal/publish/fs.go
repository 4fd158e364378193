// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FSStore keeps objects as files under a root directory. Each object has a
// JSON sidecar (<file>.meta) holding its content type and metadata.
type FSStore struct {
	root string
}

// NewFS returns a store rooted at root, creating it if needed.
func NewFS(root string) (*FSStore, error) {
	if root == "" {
		root = "published"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating publish root %s: %w", root, err)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) Driver() Driver { return DriverFilesystem }

// sanitizeKey rejects keys that are empty, absolute, or escape the root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("invalid key %q contains '..'", key)
		}
	}
	return filepath.ToSlash(filepath.Clean(key)), nil
}

type metaFile struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	ETag        string            `json:"etag"`
	Size        int64             `json:"size"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Put streams r to a temp file, then moves it into place and writes the
// sidecar. An existing key fails with ErrExists.
func (s *FSStore) Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	k, err := sanitizeKey(key)
	if err != nil {
		return Info{}, err
	}
	dataPath := filepath.Join(s.root, filepath.FromSlash(k))
	if _, err := os.Stat(dataPath); err == nil {
		return Info{}, fmt.Errorf("%s: %w", key, ErrExists)
	}
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return Info{}, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dataPath), ".tmp-*")
	if err != nil {
		return Info{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, h), r)
	if err != nil {
		_ = tmp.Close()
		return Info{}, err
	}
	if err := tmp.Close(); err != nil {
		return Info{}, err
	}
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		return Info{}, err
	}

	now := time.Now().UTC()
	mf := metaFile{
		ContentType: opts.ContentType,
		Metadata:    opts.Metadata,
		ETag:        hex.EncodeToString(h.Sum(nil)),
		Size:        size,
		CreatedAt:   now,
	}
	data, err := json.MarshalIndent(mf, "", "  ")
	if err != nil {
		return Info{}, err
	}
	if err := os.WriteFile(dataPath+".meta", data, 0o644); err != nil {
		return Info{}, fmt.Errorf("writing sidecar for %s: %w", key, err)
	}

	return Info{
		Key:          key,
		Size:         size,
		ContentType:  opts.ContentType,
		ETag:         mf.ETag,
		Metadata:     opts.Metadata,
		LastModified: now,
		URL:          fileURL(dataPath),
	}, nil
}

func fileURL(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String()
}
