// Package config loads the gateway's configuration via viper, grounded on
// the viper loading shape exercised in the pack's config-loading examples
// (defaults + file + env, then Unmarshal into a typed struct).
package config

import (
	"strings"

	"github.com/spf13/viper"
	"github.com/zeebo/errs"

	"github.com/splitgraph/seafowl/internal/objectstore"
)

// Error is the error class for this package.
var Error = errs.Class("config")

// Config is the gateway's top-level configuration (spec.md §6 "External
// Interfaces": bind_host, bind_port, log_level, object_store, plus the
// catalog_dsn this gateway's reference Context needs).
type Config struct {
	BindHost   string `mapstructure:"bind_host"`
	BindPort   int    `mapstructure:"bind_port"`
	LogLevel   string `mapstructure:"log_level"`
	CatalogDSN string `mapstructure:"catalog_dsn"`

	ObjectStore ObjectStoreSection `mapstructure:"object_store"`
}

// ObjectStoreSection is the raw, viper-friendly form of the tagged-union
// object store config (spec.md §3): exactly one sub-section should be
// populated, selected by Kind.
type ObjectStoreSection struct {
	Kind string `mapstructure:"kind"` // "local" | "memory" | "s3" | "gcs"

	Local LocalSection `mapstructure:"local"`
	S3    S3Section    `mapstructure:"s3"`
	GCS   GCSSection   `mapstructure:"gcs"`
}

type LocalSection struct {
	DataDir string `mapstructure:"data_dir"`
}

type S3Section struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

type GCSSection struct {
	Bucket          string `mapstructure:"bucket"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// ToObjectStoreConfig converts the raw section into the tagged union
// internal/objectstore.Config expects.
func (s ObjectStoreSection) ToObjectStoreConfig() (objectstore.Config, error) {
	switch s.Kind {
	case "local":
		return objectstore.Config{Local: &objectstore.LocalConfig{DataDir: s.Local.DataDir}}, nil
	case "memory", "":
		return objectstore.Config{InMemory: &objectstore.InMemoryConfig{}}, nil
	case "s3":
		return objectstore.Config{S3: &objectstore.S3Config{
			Bucket:          s.S3.Bucket,
			Region:          s.S3.Region,
			Endpoint:        s.S3.Endpoint,
			AccessKeyID:     s.S3.AccessKeyID,
			SecretAccessKey: s.S3.SecretAccessKey,
			UsePathStyle:    s.S3.UsePathStyle,
		}}, nil
	case "gcs":
		return objectstore.Config{GCS: &objectstore.GCSConfig{
			Bucket:          s.GCS.Bucket,
			CredentialsFile: s.GCS.CredentialsFile,
		}}, nil
	default:
		return objectstore.Config{}, Error.New("unknown object store kind %q", s.Kind)
	}
}

// Defaults applies the gateway's zero-config defaults onto v, grounded on
// the newViperWithDefaults pattern: defaults are set before any config
// file or env vars are read, so those can override them.
func Defaults(v *viper.Viper) {
	v.SetDefault("bind_host", "127.0.0.1")
	v.SetDefault("bind_port", 8080)
	v.SetDefault("log_level", "default")
	v.SetDefault("catalog_dsn", "file:seafowl.db")
	v.SetDefault("object_store.kind", "memory")
}

// Load builds a viper instance that reads, in precedence order: explicit
// defaults, an optional config file at configPath (if non-empty), then
// environment variables prefixed SEAFOWL_ (e.g. SEAFOWL_BIND_PORT).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	Defaults(v)

	v.SetEnvPrefix("seafowl")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, Error.Wrap(err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, Error.Wrap(err)
	}
	return &cfg, nil
}
