package stack

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/medrag/pkg/config"
)

// IndexFlagKeys are the registry flags every index-backed command shares.
var IndexFlagKeys = []string{
	config.FlagSnapshotProvider,
	config.FlagSnapshotPath,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
}

// ServiceFlagKeys add the answering flags to IndexFlagKeys.
var ServiceFlagKeys = append(append([]string{}, IndexFlagKeys...),
	config.FlagSource,
	config.FlagCompletionProv,
	config.FlagCompletionModel,
	config.FlagEventStreamProv,
)

// AddFlags registers the given registry flags on cmd. Commands read the
// resolved values through LoadConfig, never from the flag targets.
func AddFlags(cmd *cobra.Command, keys []string) {
	for _, key := range keys {
		if key == config.FlagEmbeddingDims {
			config.AddUintFlag(cmd, config.MedragFlags, key, new(uint))
			continue
		}
		config.AddStringFlag(cmd, config.MedragFlags, key, new(string))
	}
}
