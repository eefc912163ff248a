package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pipdeck/pipdeck/calendar"
	"github.com/pipdeck/pipdeck/config"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Manage the economic-calendar store",
}

var calendarImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Run the scraper and store its events",
	Long: `Run the configured external scraper and upsert the events it
returns into the calendar database. Re-importing an overlapping window
replaces existing rows by id.

Example:
  pipdeck calendar import --config pipdeck.yaml --until 30`,
	RunE: runCalendarImport,
}

var calendarListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print stored events for a day-offset window",
	RunE:  runCalendarList,
}

var calendarExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored events for a window as CSV",
	RunE:  runCalendarExport,
}

var (
	calConfigPath   string
	calSince        int
	calUntil        int
	calCentralBanks bool
	calGlobal       bool
	calCountries    []string
	calImpact       string
	calOutPath      string
)

func init() {
	rootCmd.AddCommand(calendarCmd)
	calendarCmd.AddCommand(calendarImportCmd, calendarListCmd, calendarExportCmd)

	calendarCmd.PersistentFlags().StringVarP(&calConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	calendarCmd.MarkPersistentFlagRequired("config")
	calendarCmd.PersistentFlags().IntVar(&calSince, "since", 0, "window start, days from today")
	calendarCmd.PersistentFlags().IntVar(&calUntil, "until", 15, "window end, days from today")

	calendarImportCmd.Flags().BoolVar(&calCentralBanks, "central-banks", true, "include central-bank schedules")
	calendarImportCmd.Flags().BoolVar(&calGlobal, "global", true, "include global expansion sources")

	calendarListCmd.Flags().StringSliceVar(&calCountries, "countries", nil, "filter by country codes, e.g. US,EU")
	calendarListCmd.Flags().StringVar(&calImpact, "impact", "", "minimum impact (Low, Medium, High)")

	calendarExportCmd.Flags().StringVarP(&calOutPath, "out", "o", "", "output file (default stdout)")
}

func openCalendarStore() (*calendar.Store, *config.Config, error) {
	cfg, err := config.LoadFromFile(calConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	store, err := calendar.NewStore(cfg.Calendar.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open calendar store: %w", err)
	}
	return store, cfg, nil
}

func runCalendarImport(cmd *cobra.Command, args []string) error {
	log := newLogger()

	store, cfg, err := openCalendarStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runner, err := calendar.NewRunner(cfg.Calendar.ScraperCommand)
	if err != nil {
		return fmt.Errorf("scraper: %w", err)
	}

	opts := calendar.ScrapeOptions{
		SinceDays:    calSince,
		UntilDays:    calUntil,
		CentralBanks: calCentralBanks,
		Global:       calGlobal,
	}
	log.Info().
		Int("since_days", opts.SinceDays).
		Int("until_days", opts.UntilDays).
		Msg("running scraper")

	events, err := runner.Run(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}

	n, err := store.UpsertAll(events)
	if err != nil {
		return fmt.Errorf("store events: %w", err)
	}
	log.Info().Int("events", n).Msg("import complete")
	return nil
}

func runCalendarList(cmd *cobra.Command, args []string) error {
	store, _, err := openCalendarStore()
	if err != nil {
		return err
	}
	defer store.Close()

	events, err := listWindow(store)
	if err != nil {
		return err
	}

	for _, ev := range events {
		fmt.Printf("%s  %-3s %-6s  %s\n",
			ev.DateTimeUTC.Format("2006-01-02 15:04"),
			ev.Country, ev.Impact, ev.Title)
	}
	fmt.Printf("%d events\n", len(events))
	return nil
}

func runCalendarExport(cmd *cobra.Command, args []string) error {
	store, _, err := openCalendarStore()
	if err != nil {
		return err
	}
	defer store.Close()

	events, err := listWindow(store)
	if err != nil {
		return err
	}

	out := os.Stdout
	if calOutPath != "" {
		f, err := os.Create(calOutPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return calendar.ExportCSV(out, events)
}

func listWindow(store *calendar.Store) ([]calendar.Event, error) {
	filter := calendar.Filter{Countries: calCountries}
	if calImpact != "" {
		min, ok := calendar.ParseImpact(calImpact)
		if !ok {
			return nil, fmt.Errorf("invalid --impact %q (use Low, Medium, or High)", calImpact)
		}
		filter.MinImpact = min
	}

	now := time.Now().UTC()
	return store.ListBetween(
		now.AddDate(0, 0, calSince),
		now.AddDate(0, 0, calUntil),
		filter,
	)
}
