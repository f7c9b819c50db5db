// Package blobstore abstracts storage of immutable snapshot blobs.
//
// Snapshots are whole-file, write-once artifacts, so the interface is
// deliberately sequential: Put writes a complete blob atomically, Open
// streams it back. Memory and local filesystem stores live in this package;
// S3 and MinIO backends are provided as subpackages so their SDKs stay out
// of the dependency graph of callers that do not need them.
package blobstore
