// Package blobstore provides the binary asset store the media workflows
// write character images into.
//
// Paths follow the "{ownerID}/{assetID}" layout. The Store interface is
// the only surface the workflows consume; backends are an in-process
// MemoryStore for tests and an S3-compatible store (MinIO-style static
// credentials and base endpoint) for deployments.
package blobstore
