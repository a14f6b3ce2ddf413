package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/medrag/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the MEDRAG_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (MEDRAG_API_LISTEN, MEDRAG_EMBEDDING_MODEL, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: MEDRAG_API_LISTEN, MEDRAG_SNAPSHOT_PROVIDER, etc.
	v.SetEnvPrefix("MEDRAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes a Config from the resolved viper values.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{Version: v.GetInt("version")}

	cfg.Corpus = CorpusConfig{
		SourcePath:   v.GetString("corpus.source_path"),
		SourceLabel:  v.GetString("corpus.source_label"),
		ChunkSize:    v.GetUint("corpus.chunk_size"),
		ChunkOverlap: v.GetUint("corpus.chunk_overlap"),
	}
	cfg.Snapshot = SnapshotConfig{
		Provider:   v.GetString("snapshot.provider"),
		Path:       v.GetString("snapshot.path"),
		SQLitePath: v.GetString("snapshot.sqlite_path"),
		S3Endpoint: v.GetString("snapshot.s3_endpoint"),
		S3Bucket:   v.GetString("snapshot.s3_bucket"),
		S3Region:   v.GetString("snapshot.s3_region"),
		S3UseSSL:   v.GetBool("snapshot.s3_use_ssl"),
	}
	cfg.Embedding = EmbeddingConfig{
		Provider:   v.GetString("embedding.provider"),
		Target:     v.GetString("embedding.target"),
		Model:      v.GetString("embedding.model"),
		Dimensions: v.GetUint("embedding.dimensions"),
	}
	cfg.Index = IndexConfig{
		M:              v.GetUint("index.m"),
		EfConstruction: v.GetUint("index.ef_construction"),
		EfSearch:       v.GetUint("index.ef_search"),
		BatchSize:      v.GetUint("index.batch_size"),
	}
	cfg.Retrieval = RetrievalConfig{
		Threshold: v.GetFloat64("retrieval.threshold"),
	}
	cfg.Completion = CompletionConfig{
		Provider:  v.GetString("completion.provider"),
		Target:    v.GetString("completion.target"),
		Model:     v.GetString("completion.model"),
		APIKeyEnv: v.GetString("completion.api_key_env"),
	}
	cfg.API = APIConfig{
		Listen:           v.GetString("api.listen"),
		MaxMessageLength: v.GetUint("api.max_message_length"),
	}
	cfg.Client = ClientConfig{
		APITarget: v.GetString("client.api_target"),
	}
	cfg.EventStream = EventStreamConfig{
		Provider:  v.GetString("eventstream.provider"),
		Brokers:   brokerList(v.GetStringSlice("eventstream.brokers")),
		Topic:     v.GetString("eventstream.topic"),
		Workers:   v.GetUint("eventstream.workers"),
		QueueSize: v.GetUint("eventstream.queue_size"),
	}

	return cfg
}

// brokerList accepts both TOML arrays and comma-separated env values.
func brokerList(values []string) []string {
	return splitList(strings.Join(values, ","))
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)
	for _, key := range ValidConfigKeys() {
		v.SetDefault(key, configKeys[key].value(d))
	}
}
