// Package web serves the dashboard: live quotes and fired alarms over server-sent events.
package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/vadiminshakov/coinwatch/internal/domain"
	"github.com/vadiminshakov/coinwatch/internal/events"
)

const (
	alarmPollInterval = 2 * time.Second

	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

type quoteSource interface {
	Subscribe() chan events.QuoteSnapshot
	Unsubscribe(ch chan events.QuoteSnapshot)
	Last() (events.QuoteSnapshot, bool)
}

type alarmReader interface {
	EventsAfter(index uint64) ([]domain.AlarmEventRecord, error)
	Recent(limit int) ([]domain.AlarmEventRecord, error)
}

type alarmEntry struct {
	ID    uint64            `json:"id"`
	Event domain.AlarmEvent `json:"event"`
}

// Server exposes the HTML page, two SSE streams and the JSON endpoints for quotes and alarm history.
type Server struct {
	Addr   string
	Quotes quoteSource
	Alarms alarmReader
	logger *zap.Logger
}

// NewServer creates a new web server instance. alarms may be nil.
func NewServer(logger *zap.Logger, addr string, quotes quoteSource, alarms alarmReader) *Server {
	return &Server{Addr: addr, Quotes: quotes, Alarms: alarms, logger: logger}
}

// Handler returns the routes served by the dashboard.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/coins", s.handleCoins)
	mux.HandleFunc("/api/alarms", s.handleAlarmHistory)
	mux.HandleFunc("/quotes/stream", s.handleQuoteStream)
	mux.HandleFunc("/alarms/stream", s.handleAlarmStream)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("dashboard listening", zap.String("addr", s.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic TLS certificates via ACME.
// It also starts an HTTP server on port 80 to handle ACME HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if len(domains) == 0 {
		return fmt.Errorf("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("http (acme) server shutdown error", zap.Error(err))
		}
		if err := httpsSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("https server shutdown error", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http (acme) server error", zap.Error(err))
		}
	}()

	s.logger.Info("dashboard listening with TLS", zap.String("addr", s.Addr), zap.Strings("domains", domains))
	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleCoins(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := s.Quotes.Last()
	if !ok {
		snapshot = events.QuoteSnapshot{Coins: []domain.DisplayDescriptor{}}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		s.logger.Warn("failed to encode coins", zap.Error(err))
	}
}

// handleAlarmHistory returns the latest fired alarms, oldest first. ?limit=N caps the count.
func (s *Server) handleAlarmHistory(w http.ResponseWriter, r *http.Request) {
	if s.Alarms == nil {
		http.Error(w, "alarm journal not available", http.StatusServiceUnavailable)
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := s.Alarms.Recent(limit)
	if err != nil {
		s.logger.Warn("failed to load alarm history", zap.Error(err))
		http.Error(w, "failed to load alarms", http.StatusInternalServerError)
		return
	}

	entries := make([]alarmEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, alarmEntry{ID: rec.Index, Event: rec.Event})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		s.logger.Warn("failed to encode alarm history", zap.Error(err))
	}
}

func (s *Server) handleQuoteStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	setStreamHeaders(w)

	heartbeat := time.NewTicker(20 * time.Second)
	defer heartbeat.Stop()

	sub := s.Quotes.Subscribe()
	defer s.Quotes.Unsubscribe(sub)

	send := func(snapshot events.QuoteSnapshot) {
		payload, err := json.Marshal(snapshot)
		if err != nil {
			s.logger.Warn("failed to encode quote snapshot", zap.Error(err))
			return
		}
		fmt.Fprintf(w, "event: quotes\n")
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	if last, ok := s.Quotes.Last(); ok {
		send(last)
	} else {
		fmt.Fprintf(w, "event: no_data\n")
		fmt.Fprintf(w, "data: {}\n\n")
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case snapshot, ok := <-sub:
			if !ok {
				return
			}
			send(snapshot)
		}
	}
}

func (s *Server) handleAlarmStream(w http.ResponseWriter, r *http.Request) {
	if s.Alarms == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "alarm journal not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	setStreamHeaders(w)

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(alarmPollInterval)
	defer pollTicker.Stop()

	lastIndex := parseLastEventID(r.Header.Get("Last-Event-ID"), r.URL.Query().Get("last_event_id"))
	sendAlarms := func() error {
		records, err := s.Alarms.EventsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, record := range records {
			payload, err := json.Marshal(record.Event)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "id: %d\n", record.Index)
			fmt.Fprintf(w, "event: alarm\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendAlarms(); err != nil {
		http.Error(w, "failed to load alarms", http.StatusInternalServerError)
		s.logger.Warn("alarm stream initial load", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendAlarms(); err != nil {
				s.logger.Warn("alarm stream poll", zap.Error(err))
			}
		}
	}
}

func setStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

func parseLastEventID(headerVal, queryVal string) uint64 {
	idStr := strings.TrimSpace(headerVal)
	if idStr == "" {
		idStr = strings.TrimSpace(queryVal)
	}
	if idStr == "" {
		return 0
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
