package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pipdeck/pipdeck/config"
	"github.com/pipdeck/pipdeck/rates"
	"github.com/pipdeck/pipdeck/risk"
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Compute a position size from the command line",
	Long: `Compute risk amount, pip value per lot, and position size in lots
for one trade setup. Cross-currency pip values are converted with a live
rate lookup.

Example:
  pipdeck size --instrument EURUSD --account USD --balance 10000 --risk 1 --stop 50`,
	RunE: runSize,
}

var (
	sizeConfigPath string
	sizeInstrument string
	sizeAccount    string
	sizeBalance    float64
	sizeRisk       float64
	sizeStop       float64
)

func init() {
	rootCmd.AddCommand(sizeCmd)

	sizeCmd.Flags().StringVarP(&sizeConfigPath, "config", "f", "", "path to config file (defaults plus PIPDECK_RATES_API_KEY if omitted)")
	sizeCmd.Flags().StringVar(&sizeInstrument, "instrument", "", "instrument symbol, e.g. EURUSD or eur/usd (required)")
	sizeCmd.Flags().StringVar(&sizeAccount, "account", "USD", "account currency")
	sizeCmd.Flags().Float64Var(&sizeBalance, "balance", 0, "account balance (required)")
	sizeCmd.Flags().Float64Var(&sizeRisk, "risk", 0, "risk percent of balance, e.g. 1 for 1% (required)")
	sizeCmd.Flags().Float64Var(&sizeStop, "stop", 0, "stop-loss distance in pips (required)")
	sizeCmd.MarkFlagRequired("instrument")
	sizeCmd.MarkFlagRequired("balance")
	sizeCmd.MarkFlagRequired("risk")
	sizeCmd.MarkFlagRequired("stop")
}

func runSize(cmd *cobra.Command, args []string) error {
	cfg, err := loadOrDefaultConfig(sizeConfigPath)
	if err != nil {
		return err
	}

	timeout, _ := config.ParseDuration(cfg.Rates.Timeout, 10*time.Second)
	resolver := rates.NewResolver(rates.NewClient(cfg.Rates.BaseURL, cfg.Rates.APIKey, timeout))

	result, err := risk.Calculate(cmd.Context(), resolver, risk.Request{
		AccountCurrency: sizeAccount,
		Instrument:      sizeInstrument,
		Balance:         sizeBalance,
		RiskPercent:     sizeRisk,
		StopPips:        sizeStop,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Risk amount:     %.2f %s\n", result.RiskAmount, result.Currency)
	fmt.Printf("Pip value / lot: %.2f %s\n", result.PipValuePerLot, result.Currency)
	fmt.Printf("Position size:   %.2f lots\n", result.PositionLots)
	return nil
}

func loadOrDefaultConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		if key := os.Getenv(config.EnvRatesAPIKey); key != "" {
			cfg.Rates.APIKey = key
		}
		return cfg, nil
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
