package server

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/contactkeval/option-pricer/internal/analyzer"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

type surfaceRequest struct {
	Ticker      string             `json:"ticker"`
	StrikePrice float64            `json:"strike_price"`
	OptionType  pricing.OptionType `json:"option_type"`
}

type greeksResponse struct {
	pricing.GreeksResult
	ThetaPerDay      float64 `json:"theta_per_day"`
	TimeToExpiration float64 `json:"time_to_expiration"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "ok")
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzer.Request

	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, fmt.Errorf("%w: decode body: %v", pricing.ErrInvalidArgument, err))
			return
		}
	} else {
		var err error
		if req, err = analyzeRequestFromForm(r); err != nil {
			writeError(w, err)
			return
		}
	}

	optType, err := pricing.ParseOptionType(string(req.Type))
	if err != nil {
		writeError(w, err)
		return
	}
	req.Type = optType

	res, err := s.analyzer.AnalyzeOption(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleSurface(w http.ResponseWriter, r *http.Request) {
	var req surfaceRequest

	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, fmt.Errorf("%w: decode body: %v", pricing.ErrInvalidArgument, err))
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, fmt.Errorf("%w: parse form: %v", pricing.ErrInvalidArgument, err))
			return
		}
		strike, err := formFloat(r, "strike_price")
		if err != nil {
			writeError(w, err)
			return
		}
		req = surfaceRequest{
			Ticker:      r.FormValue("ticker"),
			StrikePrice: strike,
			OptionType:  pricing.OptionType(r.FormValue("option_type")),
		}
	}

	optType, err := pricing.ParseOptionType(string(req.OptionType))
	if err != nil {
		writeError(w, err)
		return
	}

	surface, err := s.analyzer.Surface(r.Context(), req.Ticker, req.StrikePrice, optType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, surface)
}

// handleGreeks is a pure computation over query parameters; it never calls
// the data provider.
func (s *Server) handleGreeks(w http.ResponseWriter, r *http.Request) {
	values := make(map[string]float64, 5)
	for _, key := range []string{"spot", "strike", "days", "volatility"} {
		v, err := formFloat(r, key)
		if err != nil {
			writeError(w, err)
			return
		}
		values[key] = v
	}

	rate := s.rate
	if r.FormValue("rate") != "" {
		v, err := formFloat(r, "rate")
		if err != nil {
			writeError(w, err)
			return
		}
		rate = v
	}

	optType, err := pricing.ParseOptionType(r.FormValue("option_type"))
	if err != nil {
		writeError(w, err)
		return
	}

	spec := pricing.OptionSpec{
		Spot:       values["spot"],
		Strike:     values["strike"],
		Expiry:     pricing.YearsFromDays(values["days"]),
		Volatility: values["volatility"],
		Rate:       rate,
		Type:       optType,
	}
	greeks, err := pricing.AllGreeks(spec)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, greeksResponse{
		GreeksResult:     greeks,
		ThetaPerDay:      greeks.ThetaPerDay(),
		TimeToExpiration: spec.Expiry,
	})
}

func analyzeRequestFromForm(r *http.Request) (analyzer.Request, error) {
	if err := r.ParseForm(); err != nil {
		return analyzer.Request{}, fmt.Errorf("%w: parse form: %v", pricing.ErrInvalidArgument, err)
	}

	req := analyzer.Request{
		Ticker: r.FormValue("ticker"),
		Type:   pricing.OptionType(r.FormValue("option_type")),
	}

	var err error
	if req.Strike, err = formFloat(r, "strike_price"); err != nil {
		return req, err
	}
	if req.DaysToExpiration, err = formFloat(r, "days_to_expiration"); err != nil {
		return req, err
	}
	if req.MarketPrice, err = formFloat(r, "market_price"); err != nil {
		return req, err
	}
	return req, nil
}

func formFloat(r *http.Request, key string) (float64, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", pricing.ErrInvalidArgument, key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", pricing.ErrInvalidArgument, key, raw)
	}
	return v, nil
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
