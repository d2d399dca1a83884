package telemetry

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"time"
)

const (
	defaultHistoryLimit = 500
	maxHistoryLimit     = 10_000
)

// Hub collects estimate history and fans out live updates to subscribers.
// It doubles as a Reporter so it can sit behind a MultiReporter.
type Hub struct {
	mu           sync.RWMutex
	started      time.Time
	history      []Sample
	historyLimit int
	subscribers  map[chan Sample]struct{}
}

// NewHub builds a hub keeping at most historyLimit samples. Out-of-range
// limits fall back to the default.
func NewHub(historyLimit int) *Hub {
	if historyLimit <= 0 || historyLimit > maxHistoryLimit {
		historyLimit = defaultHistoryLimit
	}
	return &Hub{
		started:      time.Now(),
		historyLimit: historyLimit,
		subscribers:  make(map[chan Sample]struct{}),
	}
}

// Report records a sample and pushes it to live subscribers. Slow subscribers
// miss samples rather than stall the pipeline.
func (h *Hub) Report(s Sample) {
	h.mu.Lock()
	h.history = append(h.history, s)
	if len(h.history) > h.historyLimit {
		h.history = h.history[len(h.history)-h.historyLimit:]
	}
	for ch := range h.subscribers {
		select {
		case ch <- s:
		default:
		}
	}
	h.mu.Unlock()
}

// History returns a copy of the stored samples.
func (h *Hub) History() []Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Sample, len(h.history))
	copy(out, h.history)
	return out
}

// Subscribe registers a listener for live updates. The cancel function
// removes the listener and closes its channel.
func (h *Hub) Subscribe() (chan Sample, func()) {
	ch := make(chan Sample, 16)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	cancel := func() {
		h.mu.Lock()
		delete(h.subscribers, ch)
		close(ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// Diagnostics reports process health alongside the hub's fill level.
type Diagnostics struct {
	Uptime       float64 `json:"uptimeSeconds"`
	NumGoroutine int     `json:"numGoroutine"`
	HistoryCount int     `json:"historyCount"`
	HistoryLimit int     `json:"historyLimit"`
}

func (h *Hub) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.History())
}

func (h *Hub) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.mu.RLock()
	diag := Diagnostics{
		Uptime:       time.Since(h.started).Seconds(),
		NumGoroutine: runtime.NumGoroutine(),
		HistoryCount: len(h.history),
		HistoryLimit: h.historyLimit,
	}
	h.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(diag)
}

func (h *Hub) handleLive(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := h.Subscribe()
	defer cancel()

	// replay history so a late subscriber sees the run so far
	for _, s := range h.History() {
		writeEvent(w, s)
	}
	flusher.Flush()

	for {
		select {
		case s, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, s)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, s Sample) {
	payload, _ := json.Marshal(s)
	w.Write([]byte("data: "))
	w.Write(payload)
	w.Write([]byte("\n\n"))
}
