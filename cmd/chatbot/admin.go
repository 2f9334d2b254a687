package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hammaddar1993/restaurant-chatbot/internal/store"
)

// registerAdminRoutes mounts the kitchen-side ops surface: order lookup and
// status updates (the only way an order reaches completed, which the feedback
// policy depends on), feedback-request marking and conversation history.
func registerAdminRoutes(mux *http.ServeMux, st store.Store, logger *slog.Logger) {
	mux.HandleFunc("GET /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}
		order, err := st.GetOrder(r.Context(), id)
		if err != nil {
			writeStoreError(w, logger, "get order", err)
			return
		}
		writeJSON(w, order)
	})

	mux.HandleFunc("POST /orders/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}
		var body struct {
			Status store.OrderStatus `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		switch body.Status {
		case store.StatusPending, store.StatusPreparing, store.StatusReady,
			store.StatusCompleted, store.StatusCancelled:
		default:
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}
		order, err := st.UpdateOrderStatus(r.Context(), id, body.Status)
		if err != nil {
			writeStoreError(w, logger, "update order status", err)
			return
		}
		writeJSON(w, order)
	})

	mux.HandleFunc("POST /orders/{id}/feedback-requested", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}
		if err := st.MarkFeedbackRequested(r.Context(), id); err != nil {
			writeStoreError(w, logger, "mark feedback requested", err)
			return
		}
		writeJSON(w, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /history", func(w http.ResponseWriter, r *http.Request) {
		phone := r.URL.Query().Get("phone")
		if phone == "" {
			http.Error(w, "phone is required", http.StatusBadRequest)
			return
		}
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		customer, err := st.GetOrCreateCustomer(r.Context(), phone)
		if err != nil {
			writeStoreError(w, logger, "look up customer", err)
			return
		}
		entries, err := st.RecentConversations(r.Context(), customer.ID, limit)
		if err != nil {
			writeStoreError(w, logger, "load conversations", err)
			return
		}
		writeJSON(w, entries)
	})
}

func writeStoreError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	logger.Error("admin operation failed", "op", op, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
