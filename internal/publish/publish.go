// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish uploads the saved upload file to a blob store so it can be
// picked up for the vault import. Two drivers exist: a local directory and an
// S3-compatible bucket.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/cddprep/internal/secrets"
	"github.com/pdiddy/cddprep/pkg/types"
)

// Driver identifies a store implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
)

// ContentType is sent with every published upload file.
const ContentType = "text/csv"

// ErrExists is returned when a key is already taken. Keys are create-only.
var ErrExists = errors.New("object already exists")

// PutOptions carries optional object attributes.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Info describes a stored object.
type Info struct {
	Key          string            `json:"key" yaml:"key"`
	Size         int64             `json:"size_bytes" yaml:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty" yaml:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified" yaml:"last_modified"`
	URL          string            `json:"url,omitempty" yaml:"url,omitempty"`
}

// Store is the write side of a blob store.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Driver() Driver
}

// Open builds the store selected by cfg.Driver. Static S3 credentials are
// taken from sec when present; otherwise the AWS default chain applies.
func Open(ctx context.Context, cfg types.PublishConfig, sec secrets.Set) (Store, error) {
	switch Driver(cfg.Driver) {
	case DriverFilesystem:
		return NewFS(cfg.Root)
	case DriverS3:
		s3cfg := S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
		}
		if id, secret, token, ok := sec.AWS(); ok {
			s3cfg.AccessKeyID, s3cfg.SecretAccessKey, s3cfg.SessionToken = id, secret, token
		}
		return NewS3(ctx, s3cfg)
	case "":
		return nil, errors.New("publishing is disabled: set publish.driver to fs or s3")
	}
	return nil, fmt.Errorf("unknown publish driver %q (want %s or %s)", cfg.Driver, DriverFilesystem, DriverS3)
}

// Key joins prefix and the base name of file with '/'.
func Key(prefix, file string) string {
	base := filepath.Base(file)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return base
	}
	return path.Join(prefix, base)
}

// Publish uploads the file at p to store under Key(prefix, p).
func Publish(ctx context.Context, store Store, p, prefix string) (Info, error) {
	f, err := os.Open(p)
	if err != nil {
		return Info{}, fmt.Errorf("opening %s for publishing: %w", p, err)
	}
	defer f.Close()

	key := Key(prefix, p)
	info, err := store.Put(ctx, key, f, PutOptions{
		ContentType: ContentType,
		Metadata:    map[string]string{"source-file": filepath.Base(p)},
	})
	if err != nil {
		return Info{}, fmt.Errorf("publishing %s to %s store as %s: %w", p, store.Driver(), key, err)
	}
	return info, nil
}
