// Package web provides an HTTP status server for the plant-monitor daemon.
package web

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/sweeney/plant-monitor/internal/plant"
	"github.com/sweeney/plant-monitor/internal/status"
)

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	monitor    *plant.Monitor
}

// New creates a Server that reads live state from the tracker and
// historical data from the monitor.
func New(addr string, tracker *status.Tracker, monitor *plant.Monitor) *Server {
	s := &Server{tracker: tracker, monitor: monitor}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/history.json", s.handleHistory)
	mux.HandleFunc("/samples.json", s.handleSamples)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// queryInt reads an integer query parameter, falling back to def when
// the parameter is absent. Malformed or non-positive values yield ok=false.
func queryInt(r *http.Request, name string, def int) (n int, ok bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(r, "days", 7)
	if !ok {
		http.Error(w, "bad days parameter", http.StatusBadRequest)
		return
	}
	// Frozen days plus the in-progress one.
	if days > plant.DayCapacity+1 {
		days = plant.DayCapacity + 1
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatHistory(s.monitor.RecentDailySummaries(days)))
}

func (s *Server) handleSamples(w http.ResponseWriter, r *http.Request) {
	hours, ok := queryInt(r, "hours", 1)
	if !ok {
		http.Error(w, "bad hours parameter", http.StatusBadRequest)
		return
	}
	if hours > 24 {
		hours = 24
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatSamples(s.monitor.RecentSamples(hours * 60)))
}
