package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/camden-git/vimlbackend/database"
	"github.com/camden-git/vimlbackend/viml"
)

type QueryHandler struct {
	DB *sql.DB
}

// Search finds occurrences by person name (substring match), optionally
// scoped to a single video.
func (qh *QueryHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required query parameter: name"})
		return
	}
	videoPath := r.URL.Query().Get("video_filename")

	results, err := database.SearchOccurrences(qh.DB, name, videoPath)
	if err != nil {
		log.Printf("Error searching occurrences for %q: %v", name, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Search failed"})
		return
	}
	if results == nil {
		results = []database.SearchResult{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   map[string]string{"video_filename": videoPath, "name": name},
		"results": results,
	})
}

// Stats serves corpus-wide analytics counts.
func (qh *QueryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := database.CollectStats(qh.DB)
	if err != nil {
		log.Printf("Error collecting stats: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to collect stats"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Network serves the person co-occurrence graph: people as nodes, shared
// videos as edges.
func (qh *QueryHandler) Network(w http.ResponseWriter, r *http.Request) {
	nodes, edges, err := database.CoOccurrenceNetwork(qh.DB)
	if err != nil {
		log.Printf("Error building co-occurrence network: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to build network"})
		return
	}
	if nodes == nil {
		nodes = []database.NetworkNode{}
	}
	if edges == nil {
		edges = []database.NetworkEdge{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"nodes": nodes, "edges": edges})
}

// IdentityTrack renders the video's identity graph as a WebVTT caption track
// with embedded VIML tags.
func (qh *QueryHandler) IdentityTrack(w http.ResponseWriter, r *http.Request) {
	videoPath := chi.URLParam(r, "video_filename")

	rows, err := database.ListIdentityTrack(qh.DB, videoPath)
	if err != nil {
		log.Printf("Error listing identity track for %s: %v", videoPath, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to generate identity track"})
		return
	}

	entries := make([]viml.Entry, len(rows))
	for i, row := range rows {
		entries[i] = viml.Entry{
			Timestamp:  row.TimestampSeconds,
			Method:     row.Method,
			Confidence: row.Confidence,
			PersonID:   row.PersonID,
			Name:       row.Name,
		}
	}

	w.Header().Set("Content-Type", "text/vtt; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(viml.GenerateVTT(entries))); err != nil {
		log.Printf("Error writing identity track response: %v", err)
	}
}
