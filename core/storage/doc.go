// Package storage wraps the MinIO client behind the minimal interface
// report archiving needs: bucket existence, bucket creation and object
// upload. It supports both AWS S3 and self-hosted MinIO instances.
package storage
