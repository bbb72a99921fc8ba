package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/zxhio/tapresp/pkg/builder"
)

var (
	verbose    bool
	version    bool
	configPath string
)

const logoAscii = `
 |_  _  _  _  _  _  _  _
 |_ (_||_)| (/__\|_)(/_
       |        |`

var rootCmd = &cobra.Command{
	Use:   "tapresp",
	Short: "ARP and ICMP echo responder on a tap interface\n\n" + color.HiBlueString(logoAscii),
	Run: func(cmd *cobra.Command, args []string) {
		if version {
			fmt.Println(builder.BuildInfo())
			os.Exit(0)
		}
		cmd.Help()
	},
}

var versionCmd = cobra.Command{
	Use:   "version",
	Short: "Print version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(color.HiBlueString(logoAscii))
		fmt.Println(builder.BuildInfo())
	},
}

func disableSort(cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		cmd.InheritedFlags().SortFlags = false
		cmd.PersistentFlags().SortFlags = false
		cmd.Flags().SortFlags = false
	}
}

func main() {
	rootCmd.AddCommand(&runCmd, &decodeCmd, &configCmd, &versionCmd)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")
	rootCmd.Flags().BoolVarP(&version, "version", "V", false, "Print version")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
