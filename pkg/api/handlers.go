package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/tracebus/canlog/pkg/stats"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	reader, closer, err := s.openCapture()
	if err != nil {
		s.log.WithError(err).Error("opening capture")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "capture unavailable"})
		return
	}
	defer closer.Close()

	summary, err := stats.Collect(reader)
	if err != nil {
		s.metrics.decodeFailuresTotal.Inc()
		s.log.WithError(err).Error("scanning capture")
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleRecords streams the capture as newline-delimited JSON. A limit
// query parameter caps the number of records.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	limit := -1
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	reader, closer, err := s.openCapture()
	if err != nil {
		s.log.WithError(err).Error("opening capture")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "capture unavailable"})
		return
	}
	defer closer.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	enc := json.NewEncoder(w)

	served := 0
	for limit < 0 || served < limit {
		msg, err := reader.ReadNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Headers are already out; log, count and cut the stream.
			s.metrics.decodeFailuresTotal.Inc()
			s.log.WithError(err).Error("decoding capture record")
			return
		}
		if err := enc.Encode(msg); err != nil {
			return
		}
		s.metrics.recordsServedTotal.Inc()
		served++
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
