package storage_test

import (
	"cardiostent/internal/config"
	"cardiostent/internal/service"
	"cardiostent/internal/storage"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ service.ArtifactStore = (*storage.ArchiveStore)(nil)

func TestArchiveStorePut(t *testing.T) {
	endpoint := os.Getenv("MINIO_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_TEST_ENDPOINT not set")
	}
	ctx := context.Background()

	store, err := storage.NewArchiveStore(ctx, config.MinioConfig{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("MINIO_TEST_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_TEST_SECRET_KEY"),
		Bucket:    "cardiostent-test",
	})
	require.NoError(t, err)

	body := "Timestamp,Cohort,Segment,Evidence,Experience,Economics\n"
	key := "exports/test-" + uuid.NewString() + ".csv"
	url, err := store.Put(ctx, key, strings.NewReader(body), int64(len(body)), "text/csv")
	require.NoError(t, err)
	assert.Contains(t, url, key)
}
