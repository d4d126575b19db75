// Command option-pricer prices European options with Black-Scholes, from the
// command line or as an HTTP service.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contactkeval/option-pricer/internal/analyzer"
	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/report"
)

// app carries state shared by every subcommand.
type app struct {
	cfg     config.Config
	out     io.Writer
	envFile string
	asJSON  bool

	newProvider func(config.Config) (data.Provider, error)
}

func main() {
	if err := newRootCmd(os.Stdout, newProvider).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer, providerFn func(config.Config) (data.Provider, error)) *cobra.Command {
	a := &app{out: out, newProvider: providerFn}

	var (
		provider  string
		dataDir   string
		rate      float64
		lookback  int
		verbosity int
	)

	root := &cobra.Command{
		Use:          "option-pricer",
		Short:        "Black-Scholes pricing, Greeks and value surfaces for European options",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.envFile)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("provider") {
				cfg.DataProvider = strings.ToLower(provider)
			}
			if flags.Changed("data-dir") {
				cfg.DataDir = dataDir
			}
			if flags.Changed("rate") {
				cfg.RiskFreeRate = rate
			}
			if flags.Changed("lookback") {
				cfg.VolLookbackDays = lookback
			}
			if flags.Changed("verbosity") {
				cfg.LogVerbosity = verbosity
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger.SetVerbosity(cfg.LogVerbosity)
			a.cfg = cfg
			return nil
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.envFile, "env-file", ".env", "optional dotenv file with configuration")
	pf.BoolVar(&a.asJSON, "json", false, "print JSON instead of tables")
	pf.StringVar(&provider, "provider", config.ProviderSynthetic, "market data provider: synthetic, massive, polygon or csv")
	pf.StringVar(&dataDir, "data-dir", "data", "directory of <TICKER>.csv files for the csv provider")
	pf.Float64Var(&rate, "rate", 0.05, "annual risk-free rate")
	pf.IntVar(&lookback, "lookback", 30, "historical volatility lookback in calendar days")
	pf.IntVar(&verbosity, "verbosity", int(logger.Info), "log verbosity: 0=error 1=info 2=debug 3=trace")

	root.AddCommand(
		a.priceCmd(),
		a.greeksCmd(),
		a.chainCmd(),
		a.parityCmd(),
		a.surfaceCmd(),
		a.analyzeCmd(),
		a.riskCmd(),
		a.serveCmd(),
	)
	return root
}

// newAnalyzer builds an Analyzer over the configured provider.
func (a *app) newAnalyzer() (*analyzer.Analyzer, error) {
	prov, err := a.newProvider(a.cfg)
	if err != nil {
		return nil, err
	}
	return analyzer.New(prov, analyzer.Options{
		RiskFreeRate:    a.cfg.RiskFreeRate,
		VolLookbackDays: a.cfg.VolLookbackDays,
	})
}

// emit prints v as JSON when --json is set, otherwise calls table.
func (a *app) emit(v any, table func(w io.Writer)) error {
	if a.asJSON {
		return report.WriteJSON(a.out, v)
	}
	table(a.out)
	return nil
}

// newProvider selects the market data provider. Live sources use another
// live source as secondary when its key is configured; synthetic data is
// never used as a fallback.
func newProvider(cfg config.Config) (data.Provider, error) {
	switch cfg.DataProvider {
	case config.ProviderSynthetic:
		logger.Infof("synthetic provider enabled")
		return data.NewSyntheticProvider(), nil

	case config.ProviderMassive:
		p := data.NewMassiveDataProvider(cfg.MassiveAPIKey)
		if cfg.PolygonAPIKey != "" {
			p.SetSecondary(data.NewPolygonDataProvider(cfg.PolygonAPIKey))
		}
		logger.Infof("massive provider enabled")
		return p, nil

	case config.ProviderPolygon:
		p := data.NewPolygonDataProvider(cfg.PolygonAPIKey)
		if cfg.MassiveAPIKey != "" {
			p.SetSecondary(data.NewMassiveDataProvider(cfg.MassiveAPIKey))
		}
		logger.Infof("polygon provider enabled")
		return p, nil

	case config.ProviderCSV:
		var secondary data.Provider
		switch {
		case cfg.MassiveAPIKey != "":
			secondary = data.NewMassiveDataProvider(cfg.MassiveAPIKey)
		case cfg.PolygonAPIKey != "":
			secondary = data.NewPolygonDataProvider(cfg.PolygonAPIKey)
		}
		logger.Infof("csv provider enabled, reading %s", cfg.DataDir)
		return data.NewLocalFileDataProvider(cfg.DataDir, secondary), nil
	}
	return nil, fmt.Errorf("unknown data provider %q", cfg.DataProvider)
}
