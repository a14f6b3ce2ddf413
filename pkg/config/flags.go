package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --source
// on both "medrag ingest" and "medrag serve").
type Flag struct {
	// Name is the long flag name (e.g. "source").
	Name string

	// Shorthand is the one-letter short flag (e.g. "s"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "corpus.source_path").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagSource           = "source"
	FlagSnapshotProvider = "snapshot-provider"
	FlagSnapshotPath     = "snapshot-path"
	FlagEmbeddingProv    = "embedding-provider"
	FlagEmbeddingTgt     = "embedding-target"
	FlagEmbeddingModel   = "embedding-model"
	FlagEmbeddingDims    = "embedding-dimensions"
	FlagCompletionProv   = "completion-provider"
	FlagCompletionModel  = "completion-model"
	FlagAPIListen        = "listen"
	FlagAPITarget        = "api-target"
	FlagEventStreamProv  = "eventstream-provider"
)

// MedragFlags is the registry of flags shared by medrag commands.
var MedragFlags = FlagSet{
	FlagSource: {
		Name:        "source",
		Shorthand:   "s",
		ViperKey:    "corpus.source_path",
		Description: "Path to the plain-text corpus document",
	},
	FlagSnapshotProvider: {
		Name:        "snapshot-provider",
		ViperKey:    "snapshot.provider",
		Description: "Snapshot storage provider (fs, sqlite, s3)",
	},
	FlagSnapshotPath: {
		Name:        "snapshot-path",
		ViperKey:    "snapshot.path",
		Description: "Snapshot key prefix",
	},
	FlagEmbeddingProv: {
		Name:        "embedding-provider",
		ViperKey:    "embedding.provider",
		Description: "Embedding provider type (ollama, openai)",
	},
	FlagEmbeddingTgt: {
		Name:        "embedding-target",
		ViperKey:    "embedding.target",
		Description: "Embedding provider URL",
	},
	FlagEmbeddingModel: {
		Name:        "embedding-model",
		ViperKey:    "embedding.model",
		Description: "Embedding model name",
	},
	FlagEmbeddingDims: {
		Name:        "embedding-dimensions",
		ViperKey:    "embedding.dimensions",
		Description: "Expected embedding dimensions, 0 to accept the model's",
	},
	FlagCompletionProv: {
		Name:        "completion-provider",
		ViperKey:    "completion.provider",
		Description: "Completion provider type (groq, openai)",
	},
	FlagCompletionModel: {
		Name:        "completion-model",
		Shorthand:   "m",
		ViperKey:    "completion.model",
		Description: "Completion model name",
	},
	FlagAPIListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "api.listen",
		Description: "Address for the API server to listen on",
	},
	FlagAPITarget: {
		Name:        "api-target",
		ViperKey:    "client.api_target",
		Description: "medrag API server URL",
	},
	FlagEventStreamProv: {
		Name:        "eventstream-provider",
		ViperKey:    "eventstream.provider",
		Description: "Answer event publisher (nop, kafka)",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
