package checks

import (
	"context"
	"testing"

	"ticket-reconciler/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func objects(infos ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(infos))
	for _, info := range infos {
		ch <- info
	}
	close(ch)
	return ch
}

func TestCheckStructure(t *testing.T) {
	ctx := context.Background()

	t.Run("AllPresent", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(true, nil)
		client.On("ListObjects", ctx, "reports", mock.Anything).
			Return(objects(minio.ObjectInfo{Key: "reconciliation/evt-1/"}))

		report, err := CheckStructure(ctx, client, "reports")
		require.NoError(t, err)
		assert.True(t, report.Exists)
		assert.Empty(t, report.Missing)
	})

	t.Run("FolderMissing", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(true, nil)
		client.On("ListObjects", ctx, "reports", mock.Anything).Return(objects())

		report, err := CheckStructure(ctx, client, "reports")
		require.NoError(t, err)
		assert.Equal(t, []string{"reconciliation"}, report.Missing)
	})

	t.Run("BucketMissing", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(false, nil)

		report, err := CheckStructure(ctx, client, "reports")
		require.NoError(t, err)
		assert.False(t, report.Exists)
		assert.Equal(t, RequiredFolders, report.Missing)
		client.AssertNotCalled(t, "ListObjects", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ListError", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(true, nil)
		client.On("ListObjects", ctx, "reports", mock.Anything).
			Return(objects(minio.ObjectInfo{Err: assert.AnError}))

		_, err := CheckStructure(ctx, client, "reports")
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestFixStructure(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("CreatesBucketAndFolders", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(false, nil)
		client.On("MakeBucket", ctx, "reports", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)
		client.On("PutObject", ctx, "reports", "reconciliation/", mock.Anything, int64(0), mock.Anything).
			Return(minio.UploadInfo{}, nil)

		err := FixStructure(ctx, client, "reports", "eu-west-1", logger, []string{"reconciliation"})
		require.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("PutFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(true, nil)
		client.On("PutObject", ctx, "reports", "reconciliation/", mock.Anything, int64(0), mock.Anything).
			Return(minio.UploadInfo{}, assert.AnError)

		err := FixStructure(ctx, client, "reports", "", logger, []string{"reconciliation"})
		assert.ErrorIs(t, err, assert.AnError)
	})
}
