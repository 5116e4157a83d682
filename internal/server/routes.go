package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/wovenlabs/loom/internal/graph"
)

func (s *Server) handleIngestMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message   string `json:"message"`
		Timestamp string `json:"timestamp,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, `{"error":"message required"}`, http.StatusBadRequest)
		return
	}

	ts := time.Now().UTC()
	if req.Timestamp != "" {
		parsed, err := graph.ParseTimestamp(req.Timestamp)
		if err != nil {
			http.Error(w, `{"error":"invalid timestamp"}`, http.StatusBadRequest)
			return
		}
		ts = parsed
	}

	res, err := s.engine.Ingest(r.Context(), req.Message, ts)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	entities := make([]string, 0, len(res.Entities))
	for _, e := range res.Entities {
		entities = append(entities, e.Name)
	}
	relations := make([]map[string]string, 0, len(res.Relations))
	for _, rel := range res.Relations {
		relations = append(relations, map[string]string{
			"source": rel.Source,
			"target": rel.Target,
			"type":   rel.Type,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "processed",
		"sender":    res.Sender.Name,
		"entities":  entities,
		"relations": relations,
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("time_filter")
	if filter == "" {
		filter = graph.FilterMonth
	}
	if !graph.ValidFilter(filter) {
		http.Error(w, `{"error":"invalid time_filter"}`, http.StatusBadRequest)
		return
	}

	snap := s.engine.Snapshot(filter, time.Now().UTC())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleRecentMessages(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, `{"error":"invalid limit"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}

	msgs, err := s.engine.DB.RecentMessages(limit)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"messages": msgs,
		"count":    len(msgs),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Reset(); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "reset"})
}
