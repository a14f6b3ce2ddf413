package main

import (
	"context"
	"fmt"
	"path"

	"dagger/medrag/internal/dagger"
)

type bucketCreds struct {
	// Bucket endpoint URL
	endpoint *dagger.Secret

	// Bucket name
	bucket *dagger.Secret

	// Bucket access key ID
	accessKeyId *dagger.Secret

	// Bucket secret access key
	secretAccessKey *dagger.Secret
}

// upload syncs artifacts to the bucket under prefix.
func (m *Medrag) upload(ctx context.Context, artifacts *dagger.Directory, prefix string, creds bucketCreds) error {
	bucketName, err := creds.bucket.Plaintext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bucket name: %w", err)
	}

	endpointUrl, err := creds.endpoint.Plaintext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get endpoint: %w", err)
	}

	destination := fmt.Sprintf("s3://%s", path.Join(bucketName, prefix))

	_, err = dag.Container().
		From("amazon/aws-cli:latest").
		WithSecretVariable("AWS_ACCESS_KEY_ID", creds.accessKeyId).
		WithSecretVariable("AWS_SECRET_ACCESS_KEY", creds.secretAccessKey).
		WithEnvVariable("AWS_DEFAULT_REGION", "auto").
		WithDirectory("/artifacts", artifacts).
		WithWorkdir("/artifacts").
		WithExec([]string{
			"aws", "s3", "sync", ".",
			destination,
			"--endpoint-url", endpointUrl,
		}).
		Sync(ctx)
	if err != nil {
		return fmt.Errorf("failed to upload artifacts: %w", err)
	}

	return nil
}

// ReleaseLatest builds release binaries and uploads them under the version
// and "latest" prefixes.
func (m *Medrag) ReleaseLatest(
	ctx context.Context,

	// Version string (e.g., "v1.0.0")
	version string,

	// Git commit SHA
	commit string,

	// Bucket endpoint URL
	endpoint *dagger.Secret,

	// Bucket name
	bucket *dagger.Secret,

	// Bucket access key ID
	accessKeyId *dagger.Secret,

	// Bucket secret access key
	secretAccessKey *dagger.Secret,
) (*dagger.Directory, error) {
	creds := bucketCreds{
		endpoint:        endpoint,
		bucket:          bucket,
		accessKeyId:     accessKeyId,
		secretAccessKey: secretAccessKey,
	}

	artifacts := m.BuildRelease(ctx, version, commit)
	for _, prefix := range []string{version, "latest"} {
		if err := m.upload(ctx, artifacts, prefix, creds); err != nil {
			return artifacts, fmt.Errorf("could not upload %s release artifacts: %w", prefix, err)
		}
	}

	return artifacts, nil
}
