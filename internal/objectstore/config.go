package objectstore

// Config is the tagged union of object-store backend configurations
// (spec.md §3 "Object Store Config"). Exactly one of the Local/InMemory/S3/
// GCS fields is set; NewFacade switches on which.
type Config struct {
	Local    *LocalConfig
	InMemory *InMemoryConfig
	S3       *S3Config
	GCS      *GCSConfig
}

// LocalConfig backs a Facade with the local filesystem, rooted at DataDir.
type LocalConfig struct {
	DataDir string
}

// InMemoryConfig backs a Facade with a process-local in-memory store, used
// in tests and for ephemeral deployments.
type InMemoryConfig struct{}

// S3Config backs a Facade with an S3 (or S3-compatible) bucket.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	// UsePathStyle forces path-style addressing, needed for most
	// S3-compatible endpoints (MinIO, etc).
	UsePathStyle bool
}

// GCSConfig backs a Facade with a Google Cloud Storage bucket.
type GCSConfig struct {
	Bucket string
	// CredentialsFile is an optional path to a service-account JSON key;
	// empty means use application-default credentials.
	CredentialsFile string
}

// RootURI returns the scheme+root this config resolves to, mirroring
// InternalObjectStore::new's root_uri derivation.
func (c Config) RootURI() string {
	switch {
	case c.Local != nil:
		return "file://" + c.Local.DataDir
	case c.InMemory != nil:
		return "memory://"
	case c.S3 != nil:
		return "s3://" + c.S3.Bucket
	case c.GCS != nil:
		return "gs://" + c.GCS.Bucket
	default:
		return ""
	}
}

// isCloud reports whether this config is one of the cloud-backed variants,
// which changes table_prefix's policy (spec.md §4.4).
func (c Config) isCloud() bool {
	return c.S3 != nil || c.GCS != nil
}

// isS3 reports whether this config is the S3 variant, which degrades
// RenameIfNotExists to a non-atomic rename (spec.md §4.4 "S3 rename
// relaxation").
func (c Config) isS3() bool {
	return c.S3 != nil
}
