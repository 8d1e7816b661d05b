package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archiver writes raw webhook payloads to object storage for audit and
// replay. Archiving is best-effort: a failed write is logged and the
// webhook proceeds.
type Archiver struct {
	client Client
	bucket string
	logger *zap.Logger
	now    func() time.Time
}

// NewArchiver creates an archiver writing into the given bucket. A nil
// client yields a disabled archiver whose Save is a no-op.
func NewArchiver(client Client, bucket string, logger *zap.Logger) *Archiver {
	return &Archiver{
		client: client,
		bucket: bucket,
		logger: logger,
		now:    time.Now,
	}
}

// Enabled reports whether payloads are actually written anywhere.
func (a *Archiver) Enabled() bool {
	return a != nil && a.client != nil
}

// Save stores one raw payload under webhooks/{event}/{externalID}-{ts}.json.
func (a *Archiver) Save(ctx context.Context, event, externalID string, payload []byte) {
	if !a.Enabled() {
		return
	}

	if externalID == "" {
		externalID = "unknown"
	}
	objectName := fmt.Sprintf("webhooks/%s/%s-%d.json", event, externalID, a.now().UnixNano())

	_, err := a.client.PutObject(ctx, a.bucket, objectName,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		a.logger.Warn("failed to archive webhook payload",
			zap.String("object", objectName),
			zap.Error(err),
		)
	}
}

// EnsureBucket creates the archive bucket when it does not exist yet.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	if !a.Enabled() {
		return nil
	}

	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check archive bucket: %w", err)
	}
	if exists {
		return nil
	}
	return a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
}
