// Package s3 implements blobstore.BlobStore on Amazon S3 (and S3-compatible
// endpoints reachable through the AWS SDK).
//
// Snapshots are immutable whole-object blobs; Put uploads through the SDK's
// concurrent upload manager, Open streams the object body.
package s3
