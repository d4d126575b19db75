package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/contactkeval/option-pricer/internal/analyzer"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/report"
	"github.com/contactkeval/option-pricer/internal/server"
)

// optionFlags are the contract terms shared by the pure pricing commands.
type optionFlags struct {
	spot       float64
	strike     float64
	days       float64
	volatility float64
	optType    string
}

func (f *optionFlags) register(cmd *cobra.Command, withStrike bool) {
	fl := cmd.Flags()
	fl.Float64Var(&f.spot, "spot", 0, "underlying spot price")
	fl.Float64Var(&f.days, "days", 30, "calendar days to expiration")
	fl.Float64Var(&f.volatility, "vol", 0.2, "annualized volatility, e.g. 0.2 for 20%")
	fl.StringVar(&f.optType, "type", "call", "option type: call or put")
	_ = cmd.MarkFlagRequired("spot")
	if withStrike {
		fl.Float64Var(&f.strike, "strike", 0, "strike price")
		_ = cmd.MarkFlagRequired("strike")
	}
}

func (f *optionFlags) spec(rate float64) (pricing.OptionSpec, error) {
	optType, err := pricing.ParseOptionType(f.optType)
	if err != nil {
		return pricing.OptionSpec{}, err
	}
	return pricing.OptionSpec{
		Spot:       f.spot,
		Strike:     f.strike,
		Expiry:     pricing.YearsFromDays(f.days),
		Volatility: f.volatility,
		Rate:       rate,
		Type:       optType,
	}, nil
}

func (a *app) priceCmd() *cobra.Command {
	var f optionFlags
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a European call or put",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := f.spec(a.cfg.RiskFreeRate)
			if err != nil {
				return err
			}
			price, err := pricing.Price(spec)
			if err != nil {
				return err
			}
			return a.emit(map[string]any{"option_type": spec.Type, "price": price}, func(w io.Writer) {
				fmt.Fprintf(w, "%s price: %.4f\n", spec.Type, price)
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func (a *app) greeksCmd() *cobra.Command {
	var f optionFlags
	cmd := &cobra.Command{
		Use:   "greeks",
		Short: "Compute price, delta, gamma, theta, vega and rho",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := f.spec(a.cfg.RiskFreeRate)
			if err != nil {
				return err
			}
			g, err := pricing.AllGreeks(spec)
			if err != nil {
				return err
			}
			return a.emit(g, func(w io.Writer) { report.RenderGreeks(w, spec, g) })
		},
	}
	f.register(cmd, true)
	return cmd
}

func (a *app) chainCmd() *cobra.Command {
	var (
		f        optionFlags
		strikes  []float64
		interval float64
		count    int
		asCSV    bool
	)
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Price a list of strikes at one expiry",
		Long: "Price the given --strikes in order, or without --strikes a ladder of\n" +
			"--count strikes either side of spot spaced by --interval.",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := f.spec(a.cfg.RiskFreeRate)
			if err != nil {
				return err
			}
			if len(strikes) == 0 {
				if strikes, err = pricing.StrikeLadder(spec.Spot, interval, count); err != nil {
					return err
				}
			}
			quotes, err := pricing.PriceChain(spec.Spot, strikes, spec.Expiry, spec.Volatility, spec.Type, spec.Rate)
			if err != nil {
				return err
			}
			if asCSV {
				return report.WriteChainCSV(a.out, quotes)
			}
			return a.emit(quotes, func(w io.Writer) { report.RenderChain(w, spec.Spot, spec.Type, quotes) })
		},
	}
	f.register(cmd, false)
	cmd.Flags().Float64SliceVar(&strikes, "strikes", nil, "comma separated strikes, priced in the given order")
	cmd.Flags().Float64Var(&interval, "interval", 5, "strike spacing when --strikes is not given")
	cmd.Flags().IntVar(&count, "count", 5, "strikes on each side of spot when --strikes is not given")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write strike,price CSV")
	return cmd
}

func (a *app) parityCmd() *cobra.Command {
	var f optionFlags
	cmd := &cobra.Command{
		Use:   "parity",
		Short: "Check put-call parity for model prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := f.spec(a.cfg.RiskFreeRate)
			if err != nil {
				return err
			}
			residual, err := pricing.VerifyPutCallParity(spec.Spot, spec.Strike, spec.Expiry, spec.Volatility, spec.Rate)
			if err != nil {
				return err
			}
			return a.emit(map[string]float64{"residual": residual}, func(w io.Writer) {
				fmt.Fprintf(w, "put-call parity residual: %.3e\n", residual)
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func (a *app) surfaceCmd() *cobra.Command {
	var (
		f      optionFlags
		ticker string
	)
	cmd := &cobra.Command{
		Use:   "surface",
		Short: "Generate the 30x50 option value surface as JSON",
		Long: "Generate the option value surface over 50 stock prices (50% to 150% of spot)\n" +
			"and 30 expiries (1 day to 1 year). With --ticker, spot and volatility come\n" +
			"from the market data provider.",
		RunE: func(cmd *cobra.Command, args []string) error {
			optType, err := pricing.ParseOptionType(f.optType)
			if err != nil {
				return err
			}

			if ticker != "" {
				an, err := a.newAnalyzer()
				if err != nil {
					return err
				}
				surface, err := an.Surface(cmd.Context(), ticker, f.strike, optType)
				if err != nil {
					return err
				}
				return report.WriteJSON(a.out, surface)
			}

			if !cmd.Flags().Changed("spot") {
				return fmt.Errorf("%w: --spot or --ticker is required", pricing.ErrInvalidArgument)
			}
			grid, err := pricing.GenerateSurface(f.spot, f.strike, f.volatility, optType, a.cfg.RiskFreeRate)
			if err != nil {
				return err
			}
			return report.WriteJSON(a.out, grid)
		},
	}
	fl := cmd.Flags()
	fl.Float64Var(&f.spot, "spot", 0, "current underlying price")
	fl.Float64Var(&f.strike, "strike", 0, "strike price")
	fl.Float64Var(&f.volatility, "vol", 0.2, "annualized volatility")
	fl.StringVar(&f.optType, "type", "call", "option type: call or put")
	fl.StringVar(&ticker, "ticker", "", "derive spot and volatility from market data for this ticker")
	_ = cmd.MarkFlagRequired("strike")
	return cmd
}

func (a *app) analyzeCmd() *cobra.Command {
	var req struct {
		ticker      string
		strike      float64
		days        float64
		marketPrice float64
		optType     string
	}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compare a quoted option price with its Black-Scholes value",
		RunE: func(cmd *cobra.Command, args []string) error {
			optType, err := pricing.ParseOptionType(req.optType)
			if err != nil {
				return err
			}
			an, err := a.newAnalyzer()
			if err != nil {
				return err
			}
			res, err := an.AnalyzeOption(cmd.Context(), analyzer.Request{
				Ticker:           req.ticker,
				Strike:           req.strike,
				DaysToExpiration: req.days,
				MarketPrice:      req.marketPrice,
				Type:             optType,
			})
			if err != nil {
				return err
			}
			return a.emit(res, func(w io.Writer) { report.RenderAnalysis(w, res) })
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&req.ticker, "ticker", "", "underlying ticker")
	fl.Float64Var(&req.strike, "strike", 0, "strike price")
	fl.Float64Var(&req.days, "days", 30, "calendar days to expiration")
	fl.Float64Var(&req.marketPrice, "market-price", 0, "quoted option price")
	fl.StringVar(&req.optType, "type", "call", "option type: call or put")
	for _, name := range []string{"ticker", "strike", "market-price"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) riskCmd() *cobra.Command {
	var (
		ticker  string
		strike  float64
		days    float64
		optType string
	)
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Show Greeks and moneyness at current market inputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := pricing.ParseOptionType(optType)
			if err != nil {
				return err
			}
			an, err := a.newAnalyzer()
			if err != nil {
				return err
			}
			profile, err := an.AnalyzeRisk(cmd.Context(), ticker, strike, days, kind)
			if err != nil {
				return err
			}
			return a.emit(profile, func(w io.Writer) { report.RenderRisk(w, profile) })
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&ticker, "ticker", "", "underlying ticker")
	fl.Float64Var(&strike, "strike", 0, "strike price")
	fl.Float64Var(&days, "days", 30, "calendar days to expiration")
	fl.StringVar(&optType, "type", "call", "option type: call or put")
	_ = cmd.MarkFlagRequired("ticker")
	_ = cmd.MarkFlagRequired("strike")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			an, err := a.newAnalyzer()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.ListenAddr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(an, a.cfg.RiskFreeRate).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (defaults to LISTEN_ADDR)")
	return cmd
}
