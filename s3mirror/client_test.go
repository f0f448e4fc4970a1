package s3mirror

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Criss1210/tarea-4/browser/browsertest"
	"github.com/Criss1210/tarea-4/evidence"
)

// newTestClient returns a Client backed by an in-memory gofakes3 server.
func newTestClient(t *testing.T, bucketName string) *Client {
	t.Helper()

	faker := gofakes3.New(s3mem.New())
	ts := httptest.NewServer(faker.Server())
	t.Cleanup(ts.Close)

	ctx := context.Background()
	client, err := New(ctx, Config{
		Endpoint:        ts.URL,
		Region:          "us-east-1",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		BucketName:      bucketName,
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	_, err = client.s3Client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucketName)})
	require.NoError(t, err)
	return client
}

var errObjectNotFound = errors.New("object not found")

// getObject reads back an uploaded object from the client's bucket.
func getObject(ctx context.Context, c *Client, key string) ([]byte, error) {
	result, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, errObjectNotFound
		}
		return nil, err
	}
	defer result.Body.Close()
	return io.ReadAll(result.Body)
}

func TestPutObjectStoresContentAndType(t *testing.T) {
	client := newTestClient(t, "evidence")
	ctx := context.Background()

	require.NoError(t, client.PutObject(ctx, "run/reporte.html", []byte("<html></html>"), "text/html"))
	data, err := getObject(ctx, client, "run/reporte.html")
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))

	head, err := client.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String("evidence"),
		Key:    aws.String("run/reporte.html"),
	})
	require.NoError(t, err)
	assert.Equal(t, "text/html", aws.ToString(head.ContentType))

	_, err = getObject(ctx, client, "run/nope.png")
	assert.ErrorIs(t, err, errObjectNotFound)
}

func TestNewUsesStaticCredentials(t *testing.T) {
	client, err := New(context.Background(), Config{
		Region:          "us-east-1",
		AccessKeyID:     "smoke-key",
		SecretAccessKey: "smoke-secret",
		BucketName:      "evidence",
	})
	require.NoError(t, err)

	creds, err := client.s3Client.Options().Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "smoke-key", creds.AccessKeyID)
	assert.Equal(t, "smoke-secret", creds.SecretAccessKey)
}

func TestPutObjectToMissingBucketFails(t *testing.T) {
	client := newTestClient(t, "evidence")
	other := NewFromS3Client(client.s3Client, "missing-bucket")

	err := other.PutObject(context.Background(), "a.png", []byte("x"), "image/png")
	assert.Error(t, err)
}

func TestPublishRunEvidence(t *testing.T) {
	client := newTestClient(t, "evidence")
	ctx := context.Background()
	dir := t.TempDir()

	store, err := evidence.EnsureDirectory(filepath.Join(dir, "captures"))
	require.NoError(t, err)
	_, err = store.SaveCapture(browsertest.NewSession(), "login_pregunta")
	require.NoError(t, err)
	reportPath := filepath.Join(dir, "reporte.html")
	require.NoError(t, os.WriteFile(reportPath, []byte("<html></html>"), 0o644))

	published, err := evidence.Publish(ctx, client, store, "captures", "nightly/run-1", reportPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"nightly/run-1/captures/login_pregunta.png", "nightly/run-1/reporte.html"}, published.Keys)

	data, err := getObject(ctx, client, "nightly/run-1/captures/login_pregunta.png")
	require.NoError(t, err)
	assert.Equal(t, browsertest.PNG, data)
}
