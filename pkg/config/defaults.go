package config

const (
	defaultSourcePath   = "medical_encyclopedia.txt"
	defaultSourceLabel  = "medical_encyclopedia"
	defaultChunkSize    = 800
	defaultChunkOverlap = 150

	defaultSnapshotProvider = "fs"
	defaultSnapshotPath     = "medical_index"
	defaultS3Bucket         = "medrag"
	defaultS3Region         = "us-east-1"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "all-minilm"
	defaultEmbeddingDimensions = 384

	defaultIndexM              = 32
	defaultIndexEfConstruction = 40
	defaultIndexEfSearch       = 64
	defaultIndexBatchSize      = 32

	defaultRetrievalThreshold = 0.3

	defaultCompletionProvider  = "groq"
	defaultCompletionModel     = "llama-3.3-70b-versatile"
	defaultCompletionAPIKeyEnv = "GROQ_API_KEY"

	defaultAPIListen           = ":8081"
	defaultAPIMaxMessageLength = 500
	defaultClientAPITarget     = "http://localhost:8081"

	defaultEventStreamProvider  = "nop"
	defaultEventStreamTopic     = "medrag.answers"
	defaultEventStreamWorkers   = 2
	defaultEventStreamQueueSize = 256
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Corpus: CorpusConfig{
			SourcePath:   defaultSourcePath,
			SourceLabel:  defaultSourceLabel,
			ChunkSize:    defaultChunkSize,
			ChunkOverlap: defaultChunkOverlap,
		},
		Snapshot: SnapshotConfig{
			Provider: defaultSnapshotProvider,
			Path:     defaultSnapshotPath,
			S3Bucket: defaultS3Bucket,
			S3Region: defaultS3Region,
			S3UseSSL: true,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Index: IndexConfig{
			M:              defaultIndexM,
			EfConstruction: defaultIndexEfConstruction,
			EfSearch:       defaultIndexEfSearch,
			BatchSize:      defaultIndexBatchSize,
		},
		Retrieval: RetrievalConfig{
			Threshold: defaultRetrievalThreshold,
		},
		Completion: CompletionConfig{
			Provider:  defaultCompletionProvider,
			Model:     defaultCompletionModel,
			APIKeyEnv: defaultCompletionAPIKeyEnv,
		},
		API: APIConfig{
			Listen:           defaultAPIListen,
			MaxMessageLength: defaultAPIMaxMessageLength,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		EventStream: EventStreamConfig{
			Provider:  defaultEventStreamProvider,
			Topic:     defaultEventStreamTopic,
			Workers:   defaultEventStreamWorkers,
			QueueSize: defaultEventStreamQueueSize,
		},
	}
}
