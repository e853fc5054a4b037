package archive

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	mu     sync.Mutex
	method string
	path   string
	body   []byte
	status int
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.method = req.Method
	rt.path = req.URL.Path
	if req.Body != nil {
		rt.body, _ = io.ReadAll(req.Body)
	}
	status := rt.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(nil)),
		Header:     http.Header{"Etag": {`"etag"`}},
		Request:    req,
	}, nil
}

func newTestArchiver(t *testing.T, rt http.RoundTripper, prefix string) *S3 {
	t.Helper()

	a, err := New(context.Background(), Config{
		Bucket:    "exports",
		Region:    "eu-west-2",
		Endpoint:  "https://s3.test.local",
		Prefix:    prefix,
		PathStyle: true,
	}, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""))
		o.RetryMaxAttempts = 1
	})
	require.NoError(t, err)
	return a
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	a := &S3{prefix: "shiprec/exports"}
	assert.Equal(t, "shiprec/exports/vessels.csv", a.Key("vessels.csv"))

	a = &S3{}
	assert.Equal(t, "vessels.csv", a.Key("vessels.csv"))
}

func TestFile(t *testing.T) {
	rt := &recordingTransport{}
	a := newTestArchiver(t, rt, "/nightly/")

	p := filepath.Join(t.TempDir(), "countries.csv")
	require.NoError(t, os.WriteFile(p, []byte("\"Code\",\"Name\"\n\"GB\",\"United Kingdom\"\n"), 0o600))

	require.NoError(t, File(context.Background(), a, p))

	assert.Equal(t, http.MethodPut, rt.method)
	assert.Equal(t, "/exports/nightly/countries.csv", rt.path)
	assert.Contains(t, string(rt.body), `"GB","United Kingdom"`)
}

func TestArchive_Error(t *testing.T) {
	rt := &recordingTransport{status: http.StatusForbidden}
	a := newTestArchiver(t, rt, "")

	err := a.Archive(context.Background(), "ports.csv", bytes.NewReader([]byte("x")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://exports/ports.csv")
}

func TestFile_Missing(t *testing.T) {
	a := newTestArchiver(t, &recordingTransport{}, "")
	err := File(context.Background(), a, filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
