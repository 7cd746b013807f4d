package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitgraph/seafowl/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.BindHost)
	assert.Equal(t, 8080, cfg.BindPort)
	assert.Equal(t, "default", cfg.LogLevel)
	assert.Equal(t, "memory", cfg.ObjectStore.Kind)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seafowl.yaml")
	contents := `
bind_host: 0.0.0.0
bind_port: 9090
log_level: dev
catalog_dsn: file:/tmp/seafowl.db
object_store:
  kind: local
  local:
    data_dir: /var/lib/seafowl
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.BindHost)
	assert.Equal(t, 9090, cfg.BindPort)
	assert.Equal(t, "dev", cfg.LogLevel)
	assert.Equal(t, "file:/tmp/seafowl.db", cfg.CatalogDSN)
	assert.Equal(t, "local", cfg.ObjectStore.Kind)
	assert.Equal(t, "/var/lib/seafowl", cfg.ObjectStore.Local.DataDir)
}

func TestObjectStoreSection_ToObjectStoreConfig(t *testing.T) {
	s3 := config.ObjectStoreSection{
		Kind: "s3",
		S3:   config.S3Section{Bucket: "my-bucket", Region: "us-east-1"},
	}
	oc, err := s3.ToObjectStoreConfig()
	require.NoError(t, err)
	require.NotNil(t, oc.S3)
	assert.Equal(t, "my-bucket", oc.S3.Bucket)

	gcs := config.ObjectStoreSection{
		Kind: "gcs",
		GCS:  config.GCSSection{Bucket: "my-gcs-bucket"},
	}
	oc, err = gcs.ToObjectStoreConfig()
	require.NoError(t, err)
	require.NotNil(t, oc.GCS)
	assert.Equal(t, "my-gcs-bucket", oc.GCS.Bucket)

	_, err = (config.ObjectStoreSection{Kind: "bogus"}).ToObjectStoreConfig()
	assert.Error(t, err)
}
