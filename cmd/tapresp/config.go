package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/zxhio/tapresp/internal/config"
	"github.com/zxhio/tapresp/pkg/utils"
)

var configCmd = cobra.Command{
	Use:   "config",
	Short: "Print the effective config",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath, nil)
		utils.CheckErrorAndExit(err, "Load config failed")

		_, err = cfg.Validate()
		utils.CheckErrorAndExit(err, "Check invalid config")

		data, err := cfg.YAML()
		utils.CheckErrorAndExit(err, "Marshal config failed")
		os.Stdout.Write(data)
	},
}
