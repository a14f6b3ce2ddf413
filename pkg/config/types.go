package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent medrag configuration stored as config.toml
// in the .medrag/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Corpus      CorpusConfig      `toml:"corpus"`
	Snapshot    SnapshotConfig    `toml:"snapshot"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	Index       IndexConfig       `toml:"index"`
	Retrieval   RetrievalConfig   `toml:"retrieval"`
	Completion  CompletionConfig  `toml:"completion"`
	API         APIConfig         `toml:"api"`
	Client      ClientConfig      `toml:"client"`
	EventStream EventStreamConfig `toml:"eventstream"`
}

// CorpusConfig describes the source document and how it is chunked.
type CorpusConfig struct {
	SourcePath   string `toml:"source_path,omitempty"`
	SourceLabel  string `toml:"source_label,omitempty"`
	ChunkSize    uint   `toml:"chunk_size,omitempty"`
	ChunkOverlap uint   `toml:"chunk_overlap,omitempty"`
}

// SnapshotConfig selects where the index snapshot is persisted.
// S3 credentials are read from AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY.
type SnapshotConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Path       string `toml:"path,omitempty"`
	SQLitePath string `toml:"sqlite_path,omitempty"`
	S3Endpoint string `toml:"s3_endpoint,omitempty"`
	S3Bucket   string `toml:"s3_bucket,omitempty"`
	S3Region   string `toml:"s3_region,omitempty"`
	S3UseSSL   bool   `toml:"s3_use_ssl"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// IndexConfig holds HNSW graph parameters.
type IndexConfig struct {
	M              uint `toml:"m,omitempty"`
	EfConstruction uint `toml:"ef_construction,omitempty"`
	EfSearch       uint `toml:"ef_search,omitempty"`
	BatchSize      uint `toml:"batch_size,omitempty"`
}

// RetrievalConfig holds retrieval settings.
type RetrievalConfig struct {
	Threshold float64 `toml:"threshold,omitempty"`
}

// CompletionConfig holds completion service settings.
type CompletionConfig struct {
	Provider  string `toml:"provider,omitempty"`
	Target    string `toml:"target,omitempty"`
	Model     string `toml:"model,omitempty"`
	APIKeyEnv string `toml:"api_key_env,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen           string `toml:"listen,omitempty"`
	MaxMessageLength uint   `toml:"max_message_length,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running API
// server. Values are full URLs (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// EventStreamConfig holds answer telemetry settings.
type EventStreamConfig struct {
	Provider  string   `toml:"provider,omitempty"`
	Brokers   []string `toml:"brokers,omitempty"`
	Topic     string   `toml:"topic,omitempty"`
	Workers   uint     `toml:"workers,omitempty"`
	QueueSize uint     `toml:"queue_size,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to accessors on *Config.
// value returns the typed value registered as the viper default.
type configKeyInfo struct {
	get   func(c *Config) string
	set   func(c *Config, v string) error
	value func(c *Config) any
}

// configKeyOrder is the stable listing order, matching the TOML layout.
var configKeyOrder = []string{
	"corpus.source_path",
	"corpus.source_label",
	"corpus.chunk_size",
	"corpus.chunk_overlap",
	"snapshot.provider",
	"snapshot.path",
	"snapshot.sqlite_path",
	"snapshot.s3_endpoint",
	"snapshot.s3_bucket",
	"snapshot.s3_region",
	"snapshot.s3_use_ssl",
	"embedding.provider",
	"embedding.target",
	"embedding.model",
	"embedding.dimensions",
	"index.m",
	"index.ef_construction",
	"index.ef_search",
	"index.batch_size",
	"retrieval.threshold",
	"completion.provider",
	"completion.target",
	"completion.model",
	"completion.api_key_env",
	"api.listen",
	"api.max_message_length",
	"client.api_target",
	"eventstream.provider",
	"eventstream.brokers",
	"eventstream.topic",
	"eventstream.workers",
	"eventstream.queue_size",
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"corpus.source_path":    stringKey(func(c *Config) *string { return &c.Corpus.SourcePath }),
	"corpus.source_label":   stringKey(func(c *Config) *string { return &c.Corpus.SourceLabel }),
	"corpus.chunk_size":     uintKey("corpus.chunk_size", func(c *Config) *uint { return &c.Corpus.ChunkSize }),
	"corpus.chunk_overlap":  uintKey("corpus.chunk_overlap", func(c *Config) *uint { return &c.Corpus.ChunkOverlap }),
	"snapshot.provider":     stringKey(func(c *Config) *string { return &c.Snapshot.Provider }),
	"snapshot.path":         stringKey(func(c *Config) *string { return &c.Snapshot.Path }),
	"snapshot.sqlite_path":  stringKey(func(c *Config) *string { return &c.Snapshot.SQLitePath }),
	"snapshot.s3_endpoint":  stringKey(func(c *Config) *string { return &c.Snapshot.S3Endpoint }),
	"snapshot.s3_bucket":    stringKey(func(c *Config) *string { return &c.Snapshot.S3Bucket }),
	"snapshot.s3_region":    stringKey(func(c *Config) *string { return &c.Snapshot.S3Region }),
	"snapshot.s3_use_ssl":   boolKey("snapshot.s3_use_ssl", func(c *Config) *bool { return &c.Snapshot.S3UseSSL }),
	"embedding.provider":    stringKey(func(c *Config) *string { return &c.Embedding.Provider }),
	"embedding.target":      stringKey(func(c *Config) *string { return &c.Embedding.Target }),
	"embedding.model":       stringKey(func(c *Config) *string { return &c.Embedding.Model }),
	"embedding.dimensions":  uintKey("embedding.dimensions", func(c *Config) *uint { return &c.Embedding.Dimensions }),
	"index.m":               uintKey("index.m", func(c *Config) *uint { return &c.Index.M }),
	"index.ef_construction": uintKey("index.ef_construction", func(c *Config) *uint { return &c.Index.EfConstruction }),
	"index.ef_search":       uintKey("index.ef_search", func(c *Config) *uint { return &c.Index.EfSearch }),
	"index.batch_size":      uintKey("index.batch_size", func(c *Config) *uint { return &c.Index.BatchSize }),
	"retrieval.threshold": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Retrieval.Threshold, 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for retrieval.threshold: %w", err)
			}
			if f < 0 || f >= 1 {
				return fmt.Errorf("invalid value for retrieval.threshold: %v is outside [0, 1)", f)
			}
			c.Retrieval.Threshold = f
			return nil
		},
		value: func(c *Config) any { return c.Retrieval.Threshold },
	},
	"completion.provider":    stringKey(func(c *Config) *string { return &c.Completion.Provider }),
	"completion.target":      stringKey(func(c *Config) *string { return &c.Completion.Target }),
	"completion.model":       stringKey(func(c *Config) *string { return &c.Completion.Model }),
	"completion.api_key_env": stringKey(func(c *Config) *string { return &c.Completion.APIKeyEnv }),
	"api.listen":             stringKey(func(c *Config) *string { return &c.API.Listen }),
	"api.max_message_length": uintKey("api.max_message_length", func(c *Config) *uint { return &c.API.MaxMessageLength }),
	"client.api_target":      stringKey(func(c *Config) *string { return &c.Client.APITarget }),
	"eventstream.provider":   stringKey(func(c *Config) *string { return &c.EventStream.Provider }),
	"eventstream.brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.EventStream.Brokers = splitList(v)
			return nil
		},
		value: func(c *Config) any { return c.EventStream.Brokers },
	},
	"eventstream.topic":      stringKey(func(c *Config) *string { return &c.EventStream.Topic }),
	"eventstream.workers":    uintKey("eventstream.workers", func(c *Config) *uint { return &c.EventStream.Workers }),
	"eventstream.queue_size": uintKey("eventstream.queue_size", func(c *Config) *uint { return &c.EventStream.QueueSize }),
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get:   func(c *Config) string { return *field(c) },
		set:   func(c *Config, v string) error { *field(c) = v; return nil },
		value: func(c *Config) any { return *field(c) },
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
		value: func(c *Config) any { return *field(c) },
	}
}

func boolKey(name string, field func(c *Config) *bool) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
		value: func(c *Config) any { return *field(c) },
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
