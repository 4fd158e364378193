// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cddprep/internal/secrets"
	"github.com/pdiddy/cddprep/pkg/types"
)

const csvBody = "Barcode,VIAL_QR_CODE,PLATE_WELL\nB1,B1,A1\n"

func writeCSV(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "CDDupload_input_file_20260307.csv")
	require.NoError(t, os.WriteFile(p, []byte(csvBody), 0o644))
	return p
}

func TestKey(t *testing.T) {
	assert.Equal(t, "a.csv", Key("", "/tmp/a.csv"))
	assert.Equal(t, "cdd/a.csv", Key("cdd", "a.csv"))
	assert.Equal(t, "cdd/in/a.csv", Key("/cdd/in/", "x/a.csv"))
}

func TestFSPublish(t *testing.T) {
	root := filepath.Join(t.TempDir(), "bucket")
	store, err := NewFS(root)
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, store.Driver())

	src := writeCSV(t)
	info, err := Publish(context.Background(), store, src, "uploads")
	require.NoError(t, err)

	assert.Equal(t, "uploads/CDDupload_input_file_20260307.csv", info.Key)
	assert.Equal(t, int64(len(csvBody)), info.Size)
	assert.Equal(t, ContentType, info.ContentType)
	assert.Len(t, info.ETag, 64)
	assert.True(t, strings.HasPrefix(info.URL, "file://"))

	dst := filepath.Join(root, "uploads", "CDDupload_input_file_20260307.csv")
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, csvBody, string(data))

	raw, err := os.ReadFile(dst + ".meta")
	require.NoError(t, err)
	var mf metaFile
	require.NoError(t, json.Unmarshal(raw, &mf))
	assert.Equal(t, ContentType, mf.ContentType)
	assert.Equal(t, "CDDupload_input_file_20260307.csv", mf.Metadata["source-file"])
	assert.Equal(t, info.ETag, mf.ETag)

	_, err = Publish(context.Background(), store, src, "uploads")
	assert.ErrorIs(t, err, ErrExists)
}

func TestFSPutRejectsBadKeys(t *testing.T) {
	store, err := NewFS(t.TempDir())
	require.NoError(t, err)
	for _, key := range []string{"", "  ", "/abs.csv", "../escape.csv", "a/../../b.csv"} {
		_, err := store.Put(context.Background(), key, strings.NewReader("x"), PutOptions{})
		assert.Error(t, err, "key %q", key)
	}
}

func TestPublishMissingFile(t *testing.T) {
	store, err := NewFS(t.TempDir())
	require.NoError(t, err)
	_, err = Publish(context.Background(), store, filepath.Join(t.TempDir(), "nope.csv"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// fakeS3 is an in-memory S3 subset answering HEAD and PUT on path-style URLs.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	headErr int
}

type fakeObject struct {
	body        []byte
	contentType string
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string]fakeObject{}} }

func (f *fakeS3) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	empty := func(status int, h http.Header) *http.Response {
		if h == nil {
			h = http.Header{}
		}
		return &http.Response{StatusCode: status, Header: h, Body: io.NopCloser(bytes.NewReader(nil)), Request: req}
	}

	switch req.Method {
	case http.MethodHead:
		if f.headErr != 0 {
			return empty(f.headErr, nil), nil
		}
		obj, ok := f.objects[key]
		if !ok {
			return empty(http.StatusNotFound, nil), nil
		}
		return empty(http.StatusOK, http.Header{
			"Content-Length": {strconv.Itoa(len(obj.body))},
			"Content-Type":   {obj.contentType},
			"Etag":           {`"etag-` + key + `"`},
			"Last-Modified":  {time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC).Format(http.TimeFormat)},
		}), nil
	case http.MethodPut:
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		if strings.Contains(req.Header.Get("Content-Encoding"), "aws-chunked") || req.Header.Get("X-Amz-Decoded-Content-Length") != "" {
			if body, err = decodeAWSChunked(body); err != nil {
				return nil, err
			}
		}
		f.objects[key] = fakeObject{body: body, contentType: req.Header.Get("Content-Type")}
		return empty(http.StatusOK, http.Header{"Etag": {`"etag-` + key + `"`}}), nil
	}
	return empty(http.StatusNotImplemented, nil), nil
}

// decodeAWSChunked strips aws-chunked framing: <hex>[;ext]\r\n<data>\r\n ... 0\r\n<trailers>.
func decodeAWSChunked(b []byte) ([]byte, error) {
	r := bufio.NewReader(bytes.NewReader(b))
	var out bytes.Buffer
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("reading chunk header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		n, err := strconv.ParseInt(line, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("chunk size %q: %w", line, err)
		}
		if n == 0 {
			return out.Bytes(), nil
		}
		if _, err := io.CopyN(&out, r, n); err != nil {
			return nil, err
		}
		if _, err := r.Discard(2); err != nil {
			return nil, err
		}
	}
}

func newTestS3(t *testing.T, fake *fakeS3) *S3Store {
	t.Helper()
	store, err := NewS3(context.Background(), S3Config{
		Region:          "us-east-1",
		Bucket:          "cdd-uploads",
		Endpoint:        "https://s3.test.local",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		PathStyle:       true,
		HTTPClient:      fake,
	})
	require.NoError(t, err)
	return store
}

func TestS3Publish(t *testing.T) {
	fake := newFakeS3()
	store := newTestS3(t, fake)
	assert.Equal(t, DriverS3, store.Driver())

	src := writeCSV(t)
	info, err := Publish(context.Background(), store, src, "incoming")
	require.NoError(t, err)

	key := "incoming/CDDupload_input_file_20260307.csv"
	assert.Equal(t, key, info.Key)
	assert.Equal(t, "s3://cdd-uploads/"+key, info.URL)
	assert.Equal(t, int64(len(csvBody)), info.Size)
	assert.Equal(t, ContentType, info.ContentType)
	assert.Equal(t, "etag-"+key, info.ETag)

	require.Contains(t, fake.objects, key)
	assert.Equal(t, csvBody, string(fake.objects[key].body))

	_, err = Publish(context.Background(), store, src, "incoming")
	assert.ErrorIs(t, err, ErrExists)
}

func TestS3PutHeadFailure(t *testing.T) {
	fake := newFakeS3()
	fake.headErr = http.StatusForbidden
	store := newTestS3(t, fake)

	_, err := store.Put(context.Background(), "k.csv", strings.NewReader("x"), PutOptions{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrExists)
	assert.Contains(t, err.Error(), "checking s3://cdd-uploads/k.csv")
	assert.Empty(t, fake.objects)
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{})
	assert.ErrorContains(t, err, "s3 bucket required")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, types.PublishConfig{Driver: types.PublishFilesystem, Root: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, store.Driver())

	store, err = Open(ctx, types.PublishConfig{Driver: types.PublishS3, Bucket: "b", Region: "eu-west-1"},
		secrets.Set{secrets.AWSAccessKeyID: "id", secrets.AWSSecretAccessKey: "secret"})
	require.NoError(t, err)
	assert.Equal(t, DriverS3, store.Driver())

	_, err = Open(ctx, types.PublishConfig{}, nil)
	assert.ErrorContains(t, err, "publishing is disabled")

	_, err = Open(ctx, types.PublishConfig{Driver: "ftp"}, nil)
	assert.ErrorContains(t, err, `unknown publish driver "ftp"`)
}
