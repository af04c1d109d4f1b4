package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
	"github.com/chemi-labs/chemtutor/internal/core/ports"
	"github.com/chemi-labs/chemtutor/internal/infrastructure/storage/localfs"
	"github.com/chemi-labs/chemtutor/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	searcher     ports.Searcher
	tutor        ports.TutorChat
	queue        ports.MessageQueue
	media        *localfs.MediaStorage
	metrics      *metrics.HTTPServerMetrics
	logger       *slog.Logger
	searchMode   string
	historyLimit int
}

type RouterOptions struct {
	SearchMode   string
	HistoryLimit int
	Logger       *slog.Logger
}

// NewRouter accepts nil tutor, queue and media for retrieval-only
// deployments; the matching endpoints then answer 404.
func NewRouter(
	searcher ports.Searcher,
	tutor ports.TutorChat,
	queue ports.MessageQueue,
	media *localfs.MediaStorage,
	serverMetrics *metrics.HTTPServerMetrics,
	options RouterOptions,
) *Router {
	historyLimit := options.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 20
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		searcher:     searcher,
		tutor:        tutor,
		queue:        queue,
		media:        media,
		metrics:      serverMetrics,
		logger:       logger,
		searchMode:   options.SearchMode,
		historyLimit: historyLimit,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.Handle("/metrics", rt.metrics.Handler())
	mux.HandleFunc("/v1/search", rt.search)
	mux.HandleFunc("/v1/search/context", rt.searchContext)
	mux.HandleFunc("/v1/chat", rt.chat)
	mux.HandleFunc("/v1/chat/", rt.chatHistory)
	mux.HandleFunc("/v1/corpus/reindex", rt.reindexCorpus)
	mux.HandleFunc("/media/", rt.serveMedia)

	handler := rt.metrics.Middleware(serviceName, mux)
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type searchRequest struct {
	Query     string  `json:"query"`
	TopK      int     `json:"top_k"`
	Threshold float64 `json:"threshold"`
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	results := rt.searcher.Search(r.Context(), req.Query, req.TopK, req.Threshold)
	rt.metrics.RecordSearch(serviceName, "/v1/search", rt.searchMode, len(results), time.Since(start))

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   req.Query,
		"results": results,
		"total":   len(results),
	})
}

func (rt *Router) searchContext(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	retrieval := rt.searcher.SearchWithContext(r.Context(), req.Query)
	rt.metrics.RecordSearch(serviceName, "/v1/search/context", rt.searchMode, retrieval.TotalResults, time.Since(start))

	writeJSON(w, http.StatusOK, retrieval)
}

func decodeSearchRequest(w http.ResponseWriter, r *http.Request) (searchRequest, bool) {
	var req searchRequest
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return req, false
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return req, false
	}
	return req, true
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	if rt.tutor == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chat is not enabled"})
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	response, err := rt.tutor.Ask(r.Context(), req)
	rt.metrics.RecordChatTurn(serviceName, err)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (rt *Router) chatHistory(w http.ResponseWriter, r *http.Request) {
	if rt.tutor == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chat is not enabled"})
		return
	}
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	threadID := strings.TrimPrefix(r.URL.Path, "/v1/chat/")
	if threadID == "" || strings.Contains(threadID, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "thread id is required"})
		return
	}

	messages, err := rt.tutor.History(r.Context(), threadID, rt.historyLimit)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"thread_id": threadID,
		"messages":  messages,
	})
}

func (rt *Router) reindexCorpus(w http.ResponseWriter, r *http.Request) {
	if rt.queue == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "reindex queue is not enabled"})
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Reason == "" {
		req.Reason = "manual"
	}

	if err := rt.queue.PublishCorpusReindex(r.Context(), req.Reason); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled", "reason": req.Reason})
}

func (rt *Router) serveMedia(w http.ResponseWriter, r *http.Request) {
	if rt.media == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "media storage is not enabled"})
		return
	}
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/media/")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "media key is required"})
		return
	}

	file, err := rt.media.Open(r.Context(), key)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "media not found"})
		return
	}
	defer file.Close()

	if contentType := mime.TypeByExtension(filepath.Ext(key)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, file); err != nil && !errors.Is(err, http.ErrBodyNotAllowed) {
		return
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
