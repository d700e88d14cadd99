package report

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"staff-sync/core/n2f"
	"staff-sync/core/storage"
)

func sampleOutcomes() []n2f.Outcome {
	return []n2f.Outcome{
		n2f.SuccessOutcome("ok", 200, 1, n2f.ActionCreate, "user", "a@corp.example", "users"),
		n2f.SuccessOutcome("ok", 200, 1, n2f.ActionCreate, "user", "b@corp.example", "users"),
		n2f.FailureOutcome("bad", 400, 1, "invalid", n2f.ActionCreate, "user", "c@corp.example", "users"),
		n2f.SuccessOutcome("ok", 200, 1, n2f.ActionUpdate, "user", "d@corp.example", "users"),
		n2f.SuccessOutcome("ok", 200, 1, n2f.ActionCreate, "axe", "P-1", "projects"),
	}
}

func TestAggregate(t *testing.T) {
	summaries := Aggregate(sampleOutcomes())

	require.Len(t, summaries, 3)
	assert.Equal(t, ScopeSummary{Scope: "projects", Action: "create", Success: 1, Total: 1}, summaries[0])
	assert.Equal(t, ScopeSummary{Scope: "users", Action: "create", Success: 2, Total: 3}, summaries[1])
	assert.Equal(t, ScopeSummary{Scope: "users", Action: "update", Success: 1, Total: 1}, summaries[2])
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}

func TestExportWritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	outcomes := sampleOutcomes()

	path, err := Export(Config{Dir: dir}, outcomes)
	require.NoError(t, err)
	assert.FileExists(t, path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var o n2f.Outcome
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &o))
		lines++
	}
	assert.Equal(t, len(outcomes), lines)
}

// fakeStorage records archive calls without a real backend.
type fakeStorage struct {
	bucketExists bool
	madeBucket   string
	putObject    string
	putSize      int64
}

func (f *fakeStorage) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return f.bucketExists, nil
}

func (f *fakeStorage) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	f.madeBucket = bucketName
	return nil
}

func (f *fakeStorage) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.putObject = objectName
	f.putSize = objectSize
	return minio.UploadInfo{Size: objectSize}, nil
}

func TestArchiveUploadsReport(t *testing.T) {
	path, err := Export(Config{Dir: t.TempDir()}, sampleOutcomes())
	require.NoError(t, err)

	store := &fakeStorage{}
	cfg := storage.Config{Bucket: "sync-reports"}

	err = Archive(context.Background(), store, cfg, path, zap.NewNop())
	require.NoError(t, err)

	// Missing bucket is created before upload.
	assert.Equal(t, "sync-reports", store.madeBucket)
	assert.Contains(t, store.putObject, "run-")
	assert.Greater(t, store.putSize, int64(0))
}

func TestArchiveSkipsBucketCreation(t *testing.T) {
	path, err := Export(Config{Dir: t.TempDir()}, sampleOutcomes())
	require.NoError(t, err)

	store := &fakeStorage{bucketExists: true}
	err = Archive(context.Background(), store, storage.Config{Bucket: "sync-reports"}, path, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, store.madeBucket)
}
