package main

import (
	"os"

	servecmder "github.com/papercomputeco/medrag/cmd/medrag/serve"
)

func main() {
	cmd := servecmder.NewServeCmd()
	cmd.Use = "medragd"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .medrag/ config directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
