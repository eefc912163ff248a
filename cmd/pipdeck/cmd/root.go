package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pipdeck",
	Short: "Backend services for the pipdeck trading site",
	Long: `Pipdeck is the backend behind the pipdeck trading site.

It provides:
  - The position-size calculator API used by the dashboard
  - The economic-calendar store and its scraper import
  - The newsletter signup relay

Complete documentation is available at https://github.com/pipdeck/pipdeck`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()
}
