package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsroom/internal/api"
	"newsroom/internal/articles"
	"newsroom/internal/config"
	"newsroom/internal/images"
	"newsroom/internal/logging"
	"newsroom/internal/pipeline"
	"newsroom/internal/services"
	"newsroom/internal/services/imagegen"
	"newsroom/internal/stage"
	"newsroom/internal/store"
)

const (
	maxBatch       = 100
	maxRequestBody = 64 << 10
)

type apiServer struct {
	bind       string
	batchSize  int
	logger     *slog.Logger
	daemon     *Daemon
	articleSvc *api.ArticleService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:       strings.TrimSpace(cfg.Daemon.APIBind),
		batchSize:  cfg.Pipeline.BatchSize,
		logger:     logging.NewComponentLogger(logger, "api-server"),
		daemon:     d,
		articleSvc: api.NewArticleService(d.store),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/queue/build", srv.handleQueueBuild)
	mux.HandleFunc("POST /api/queue/cleanup", srv.handleQueueCleanup)
	mux.HandleFunc("GET /api/queue/stats", srv.handleQueueStats)
	mux.HandleFunc("POST /api/transcripts/fetch", srv.handleTranscriptsFetch)
	mux.HandleFunc("POST /api/articles/write", srv.handleArticlesWrite)
	mux.HandleFunc("GET /api/articles", srv.handleArticles)
	mux.HandleFunc("GET /api/articles/{id}", srv.handleArticle)
	mux.HandleFunc("GET /api/art/{id}/image", srv.handleArtImage)
	mux.HandleFunc("POST /api/summaries/generate", srv.handleSummaries)
	mux.HandleFunc("POST /api/images/generate", srv.handleImages)
	mux.HandleFunc("POST /api/pipeline/run", srv.handlePipelineRun)
	mux.HandleFunc("GET /api/status", srv.handleStatus)
	mux.HandleFunc("GET /api/health", srv.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	srv.server = &http.Server{
		Handler:           authMiddleware(strings.TrimSpace(cfg.Daemon.APIToken), mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		s.logger.Info("api server disabled", logging.String("reason", "daemon.api_bind is empty"))
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.listener == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	_ = s.listener.Close()
	s.listener = nil
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleQueueBuild(w http.ResponseWriter, r *http.Request) {
	var req api.BatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	n, ok := s.count(w, req.Count)
	if !ok {
		return
	}
	added, err := s.daemon.pipeline.Discover(r.Context(), n)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	size, err := s.daemon.store.QueueSize(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.QueueBuildResponse{Added: added, QueueSize: size})
}

func (s *apiServer) handleQueueCleanup(w http.ResponseWriter, r *http.Request) {
	removed, err := s.daemon.store.CleanupQueue(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

func (s *apiServer) handleQueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.daemon.pipeline.Stats(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromStats(stats))
}

func (s *apiServer) handleTranscriptsFetch(w http.ResponseWriter, r *http.Request) {
	s.runBatch(w, r, func(ctx context.Context, n int) (stage.Report, error) {
		return s.daemon.pipeline.FetchTranscripts(ctx, n)
	})
}

func (s *apiServer) handleArticlesWrite(w http.ResponseWriter, r *http.Request) {
	var req api.WriteRequest
	if !s.decode(w, r, &req) {
		return
	}
	n, ok := s.count(w, req.Count)
	if !ok {
		return
	}
	report, err := s.daemon.pipeline.WriteArticles(r.Context(), n, articles.WriteOptions{
		JournalistID: req.Journalist,
		Tone:         req.Tone,
		ArticleType:  req.ArticleType,
	})
	s.writeReport(w, report, err)
}

func (s *apiServer) handleSummaries(w http.ResponseWriter, r *http.Request) {
	s.runBatch(w, r, s.daemon.pipeline.Summarize)
}

func (s *apiServer) handleImages(w http.ResponseWriter, r *http.Request) {
	var req api.ImageRequest
	if !s.decode(w, r, &req) {
		return
	}
	n, ok := s.count(w, req.Count)
	if !ok {
		return
	}
	report, err := s.daemon.pipeline.GenerateImages(r.Context(), n, images.Overrides{
		Medium:    req.Medium,
		Aesthetic: req.Aesthetic,
		Style:     req.Style,
	})
	s.writeReport(w, report, err)
}

func (s *apiServer) handlePipelineRun(w http.ResponseWriter, r *http.Request) {
	var req api.BatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	n, ok := s.count(w, req.Count)
	if !ok {
		return
	}
	report, err := s.daemon.RunPipeline(r.Context(), n)
	if err != nil {
		if report.RunID == "" {
			s.writeFailure(w, err)
			return
		}
		s.writeJSON(w, http.StatusInternalServerError, report)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *apiServer) handleArticles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.ArticleFilter{
		AuthorID:       strings.TrimSpace(query.Get("author")),
		Tone:           strings.TrimSpace(query.Get("tone")),
		ArticleType:    strings.TrimSpace(query.Get("article_type")),
		WithoutSummary: truthy(query.Get("without_summary")),
		WithoutArt:     truthy(query.Get("without_art")),
		Unpublished:    truthy(query.Get("unpublished")),
		Limit:          50,
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 500 {
			s.writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		filter.Limit = limit
	}
	if v := query.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			s.writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		filter.Offset = offset
	}
	items, err := s.articleSvc.List(r.Context(), filter)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ArticleListResponse{Items: items})
}

func (s *apiServer) handleArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	item, err := s.articleSvc.Describe(r.Context(), id)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if item == nil {
		s.writeError(w, http.StatusNotFound, "article not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.ArticleResponse{Item: *item})
}

func (s *apiServer) handleArtImage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	art, err := s.daemon.store.GetArt(r.Context(), id)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if art == nil {
		s.writeError(w, http.StatusNotFound, "art not found")
		return
	}
	if !api.IsInline(art.ImageURL) {
		http.Redirect(w, r, art.ImageURL, http.StatusFound)
		return
	}
	data, mime, err := imagegen.DecodeDataURL(art.ImageURL)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.daemon.Status(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := s.daemon.Health(r.Context(), truthy(r.URL.Query().Get("deep")))
	resp := api.HealthResponse{Ready: stage.AllReady(checks), Checks: checks}
	code := http.StatusOK
	if !resp.Ready {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, resp)
}

func (s *apiServer) runBatch(w http.ResponseWriter, r *http.Request, run func(context.Context, int) (stage.Report, error)) {
	var req api.BatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	n, ok := s.count(w, req.Count)
	if !ok {
		return
	}
	report, err := run(r.Context(), n)
	s.writeReport(w, report, err)
}

// decode reads an optional JSON body. An empty body leaves dst untouched.
func (s *apiServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *apiServer) count(w http.ResponseWriter, requested int) (int, bool) {
	n := requested
	if n == 0 {
		n = s.batchSize
	}
	if n < 1 || n > maxBatch {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("count must be between 1 and %d", maxBatch))
		return 0, false
	}
	return n, true
}

func (s *apiServer) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// writeReport answers 200 with the stage report; a systemic stage failure
// answers with its status code and the partial report.
func (s *apiServer) writeReport(w http.ResponseWriter, report stage.Report, err error) {
	if err != nil {
		s.writeJSON(w, statusFor(err), map[string]any{
			"error":  err.Error(),
			"report": report,
		})
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *apiServer) writeFailure(w http.ResponseWriter, err error) {
	s.writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrPipelineBusy):
		return http.StatusConflict
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConfiguration):
		return http.StatusPreconditionFailed
	case errors.Is(err, services.ErrDiscoverySource):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func truthy(value string) bool {
	value = strings.TrimSpace(value)
	return value == "1" || strings.EqualFold(value, "true") || strings.EqualFold(value, "yes")
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
