package storage

import (
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"github.com/rvndudz/scheduled-music-console/internal/log"
	"github.com/rvndudz/scheduled-music-console/internal/models"
)

// R2Client is the ObjectStore implementation backed by an S3-compatible
// bucket. R2 speaks the plain S3 API, so the AWS SDK does the heavy lifting
type R2Client struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	logger        *logrus.Entry
}

// NewR2Client creates a storage client from the application's storage configuration
func NewR2Client(ctx context.Context, conf models.StorageConfig, logger *logrus.Entry) (*R2Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(conf.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "NewR2Client: Failed to assemble storage client configuration")
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(conf.Endpoint)
	})
	return &R2Client{
		client:        client,
		bucket:        conf.Bucket,
		publicBaseURL: conf.PublicBaseURL,
		logger:        logger.WithField(log.FldBucket, conf.Bucket),
	}, nil
}

// DeleteObjectsForURLs deletes the objects behind the given public URLs as one
// batch. The S3 DeleteObjects call is idempotent for missing keys; per-object
// errors reported by the bucket fail the whole batch
func (c *R2Client) DeleteObjectsForURLs(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	objects := make([]types.ObjectIdentifier, 0, len(urls))
	for _, u := range urls {
		key, err := ObjectKeyForURL(c.publicBaseURL, u)
		if err != nil {
			return err
		}
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
	}
	c.logger.WithField(log.FldCount, len(objects)).Debug("Deleting storage objects")
	out, err := c.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(c.bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return errors.Wrap(err, "DeleteObjectsForURLs: Batch delete request failed")
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return errors.Errorf(
			"DeleteObjectsForURLs: %d object(s) could not be deleted; first failure: %s (%s)",
			len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message),
		)
	}
	return nil
}

// UploadObject stores the given content under the key and returns the public
// URL it will be served from
func (c *R2Client) UploadObject(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	c.logger.WithField(log.FldPath, key).Debug("Uploading storage object")
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrapf(err, "UploadObject: Failed to store object '%s'", key)
	}
	return PublicURLForKey(c.publicBaseURL, key), nil
}
