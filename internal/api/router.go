// Package api serves the receiver state over HTTP.
package api

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"sensor-receiver.klederson.com/internal/dump"
	"sensor-receiver.klederson.com/internal/metrics"
	"sensor-receiver.klederson.com/internal/receiver"
)

// NewRouter wires the health, metrics and snapshot endpoints.
func NewRouter(c *receiver.Collector, m *metrics.Metrics, log logrus.FieldLogger) *mux.Router {
	h := &handlers{collector: c, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/snapshots", h.listSnapshots).Methods(http.MethodGet)
	r.HandleFunc("/snapshots", h.reset).Methods(http.MethodDelete)
	r.HandleFunc("/snapshots/{index:[0-9]+}", h.getSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/snapshots/oldest", h.removeOldest).Methods(http.MethodDelete)
	return r
}

type handlers struct {
	collector *receiver.Collector
	log       logrus.FieldLogger
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "OK %d/%d %s\n", h.collector.Len(), h.collector.Cap(), h.collector.Occupancy())
}

// listSnapshots writes the buffer in the serial line format, oldest first.
// The copy is taken first so a slow client never holds the collector.
func (h *handlers) listSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps := h.collector.Snapshots()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := dump.NewWriter(w, nil).Dump(slices.All(snaps)); err != nil {
		h.log.WithError(err).Warn("Snapshot listing aborted")
	}
}

// getSnapshot returns one line. Indexes past the newest are clamped.
func (h *handlers) getSnapshot(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "bad index", http.StatusBadRequest)
		return
	}
	idx, s, ok := h.collector.At(idx)
	if !ok {
		http.Error(w, "buffer empty", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, dump.FormatLine(idx, s))
}

func (h *handlers) removeOldest(w http.ResponseWriter, r *http.Request) {
	if !h.collector.RemoveOldest() {
		http.Error(w, "buffer empty", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "%d\n", h.collector.Reset())
}
