package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ppotepa/streamcraft-tts/internal/config"
	"github.com/ppotepa/streamcraft-tts/internal/wizard"
)

type awsRepository struct {
	preSignClient *s3.PresignClient
	cfg           *config.Config
}

func NewAwsRepository(preSignClient *s3.PresignClient, cfg *config.Config) wizard.ArtifactRepository {
	return &awsRepository{
		preSignClient: preSignClient,
		cfg:           cfg,
	}
}

// PresignArtifact resolves an engine artifact path into a short-lived GET
// URL on the artifact bucket so the browser can stream audio previews and
// finished outputs directly.
func (a *awsRepository) PresignArtifact(ctx context.Context, path string) (string, error) {
	expiry := time.Duration(a.cfg.S3.PresignExpiry) * time.Minute
	if expiry == 0 {
		expiry = 60 * time.Minute
	}
	getObjectReq, err := a.preSignClient.PresignGetObject(
		ctx,
		&s3.GetObjectInput{
			Bucket: &a.cfg.S3.ArtifactBucket,
			Key:    &path,
		},
		s3.WithPresignExpires(expiry),
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign get object : %w", err)
	}
	return getObjectReq.URL, nil
}
