package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hammaddar1993/restaurant-chatbot/internal/usage"
)

// statsHandler serves a read-only view over one usage window family. The
// period defaults to the current day or month and can be overridden with
// the ?period= query parameter.
func statsHandler(recorder usage.Recorder, scope usage.Scope, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		period := r.URL.Query().Get("period")
		if period == "" {
			now := time.Now()
			if scope == usage.ScopeMonthly {
				period = usage.MonthlyKey(now)
			} else {
				period = usage.DailyKey(now)
			}
		}

		window, err := recorder.Window(r.Context(), scope, period)
		if err != nil {
			logger.Error("failed to read usage window", "scope", scope, "period", period, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"scope":         scope,
			"period":        period,
			"input_tokens":  window.InputTokens,
			"output_tokens": window.OutputTokens,
			"total_tokens":  window.TotalTokens(),
			"requests":      window.Requests,
			"cost_usd":      window.CostUSD,
			"cost_pkr":      window.CostPKR,
		})
	}
}
