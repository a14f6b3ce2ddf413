// Package medragcmder
package medragcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/medrag/cmd/medrag/ask"
	configcmder "github.com/papercomputeco/medrag/cmd/medrag/config"
	ingestcmder "github.com/papercomputeco/medrag/cmd/medrag/ingest"
	searchcmder "github.com/papercomputeco/medrag/cmd/medrag/search"
	servecmder "github.com/papercomputeco/medrag/cmd/medrag/serve"
	statscmder "github.com/papercomputeco/medrag/cmd/medrag/stats"
	versioncmder "github.com/papercomputeco/medrag/cmd/version"
)

const medragLongDesc string = `medrag answers medical questions from a medical encyclopedia.

The corpus is normalized, chunked and embedded into a local HNSW index.
Questions retrieve the most relevant passages and a language model answers
from them, widening the retrieval until a critic accepts the answer.

Build the index, then ask or serve:
  medrag ingest        Build the knowledge base from the corpus
  medrag ask           Answer one question
  medrag search        Show the passages a query retrieves
  medrag serve         Run the HTTP and MCP server`

const medragShortDesc string = "medrag - Medical RAG assistant"

func NewMedragCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "medrag",
		Short:        medragShortDesc,
		Long:         medragLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .medrag/ config directory")

	// Add subcommands
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(statscmder.NewStatsCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
