package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the pipdeck CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pipdeck version %s\n", version)
		fmt.Println("Backend services for the pipdeck trading site")
		fmt.Println("https://github.com/pipdeck/pipdeck")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
