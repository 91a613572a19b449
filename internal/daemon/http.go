package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/notify"
	"github.com/theirongolddev/fintrack/internal/pipeline"
)

// Router returns the HTTP API. Everything is read-only except marking
// notifications read.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/wallets", s.handleWallets)
		r.Get("/wallets/{name}/transactions", s.handleTransactions)
		r.Get("/analytics/{period}", s.handleAnalytics)
		r.Get("/home", s.handleHome)
		r.Get("/notifications", s.handleNotifications)
		r.Post("/notifications/{id}/read", s.handleMarkRead)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"dur", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// transactionView adds the wallet name, which is not part of the stored blob.
type transactionView struct {
	model.Transaction
	Wallet string `json:"wallet"`
}

func viewTransactions(txs []model.Transaction) []transactionView {
	out := make([]transactionView, len(txs))
	for i, t := range txs {
		out[i] = transactionView{Transaction: t, Wallet: t.Wallet}
	}
	return out
}

// walletView is a wallet with its budget usage.
type walletView struct {
	model.Wallet
	UsedPct      int  `json:"used_pct"`
	RemainingPct int  `json:"remaining_pct"`
	Current      bool `json:"current"`
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleWallets(w http.ResponseWriter, _ *http.Request) {
	ws, err := s.ledger.Wallets()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	current, err := s.ledger.CurrentWallet()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]walletView, len(ws))
	for i, wl := range ws {
		out[i] = walletView{
			Wallet:       wl,
			UsedPct:      wl.UsedPct(),
			RemainingPct: wl.RemainingPct(),
			Current:      wl.Name == current,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleTransactions(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, err := s.ledger.Wallet(name); err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	txs, err := s.ledger.Transactions(name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if q := r.URL.Query().Get("q"); q != "" {
		txs = pipeline.FilterByName(txs, q)
	}
	writeJSON(w, http.StatusOK, viewTransactions(txs))
}

// parseRange reads the period path segment and the optional from/to days.
func parseRange(r *http.Request) (model.Range, error) {
	q := r.URL.Query()
	return pipeline.ParseRange(chi.URLParam(r, "period"), q.Get("from"), q.Get("to"))
}

// reportKey scopes a cached report to the local day it was computed on, since
// relative periods move with the clock.
func reportKey(r *http.Request, now time.Time) string {
	return now.Format(time.DateOnly) + " " + r.URL.Path + "?" + r.URL.RawQuery
}

func (s *Service) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	key := reportKey(r, now)
	if cached, ok := s.reports.Get(key); ok {
		w.Header().Set("X-Cache", "hit")
		writeJSON(w, http.StatusOK, cached)
		return
	}

	rng, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	loaded, err := pipeline.LoadAll(s.ledger.Store(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	txs := loaded.All
	if wallet := r.URL.Query().Get("wallet"); wallet != "" {
		txs = loaded.Transactions(wallet)
	}

	report := pipeline.Analyze(txs, rng, now)
	s.reports.SetDefault(key, report)
	w.Header().Set("X-Cache", "miss")
	writeJSON(w, http.StatusOK, report)
}

// homeView is the payload of /v1/home.
type homeView struct {
	Week   model.WeekOverview `json:"week"`
	Recent []transactionView  `json:"recent"`
	Unread int                `json:"unread"`
}

func (s *Service) handleHome(w http.ResponseWriter, _ *http.Request) {
	loaded, err := pipeline.LoadAll(s.ledger.Store(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	unread, err := s.center.UnreadCount()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, homeView{
		Week:   pipeline.WeekOverview(loaded.Wallets, loaded.All, s.now()),
		Recent: viewTransactions(pipeline.Recent(loaded.All, 5)),
		Unread: unread,
	})
}

func (s *Service) handleNotifications(w http.ResponseWriter, r *http.Request) {
	filter, err := notify.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	list, err := s.center.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Service) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad notification id: %w", err))
		return
	}
	if err := s.center.MarkRead(id); err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	snap := s.snapshotStatus().Summary
	writeSSE(w, Event{Type: EventSnapshot, Timestamp: s.now(), Snapshot: &snap})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
