package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pasttense/pasttense/internal/domain"
	"github.com/pasttense/pasttense/internal/domain/search/query"
	healthuc "github.com/pasttense/pasttense/internal/usecase/health"
	visituc "github.com/pasttense/pasttense/internal/usecase/visit"
)

const (
	defaultMaxBodyBytes = 1 << 20
	statusSuccess       = "success"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the pasttense HTTP API.
type Server struct {
	visits        VisitStorer
	search        Searcher
	health        HealthReporter
	logger        *zap.Logger
	maxBodyBytes  int64
	maxTopK       int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(visits VisitStorer, search Searcher, health HealthReporter, logger *zap.Logger) *Server {
	s := &Server{
		visits:       visits,
		search:       search,
		health:       health,
		logger:       logger,
		maxBodyBytes: defaultMaxBodyBytes,
		maxTopK:      query.MaxTopK,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded,
			http.StatusPaymentRequired, ErrorCodeEmbeddingQuotaExceeded),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
	}
	return s
}

// WithLimits overrides the request body size limit and the top_k ceiling.
// Non-positive values keep the defaults.
func (s *Server) WithLimits(maxBodyBytes int64, maxTopK int) *Server {
	if maxBodyBytes > 0 {
		s.maxBodyBytes = maxBodyBytes
	}
	if maxTopK > 0 {
		s.maxTopK = maxTopK
	}
	return s
}

// StorePageVisit handles POST /page_visit.
func (s *Server) StorePageVisit(w http.ResponseWriter, r *http.Request) {
	var req PageVisitRequest
	if !s.decode(w, r, &req) {
		return
	}

	in := visituc.Input{
		URL:     req.URL,
		Title:   req.Title,
		Content: req.Content,
		HTML:    req.HTML,
	}
	if req.VisitedAt != nil {
		in.VisitedAt = *req.VisitedAt
	}

	ctx, usage := domain.WithEmbeddingUsage(r.Context())
	created, err := s.visits.Store(ctx, in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.logger.Debug("page visit stored", zap.String("url", req.URL), zap.Bool("created", created))
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, StatusResponse{Status: statusSuccess})
}

// SemanticSearch handles POST /semantic_search.
func (s *Server) SemanticSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !s.decode(w, r, &req) {
		return
	}

	q, err := searchQueryFromDTO(&req, s.maxTopK)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	ctx, usage := domain.WithEmbeddingUsage(r.Context())
	results, err := s.search.Search(ctx, &q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]SearchResultItem, len(results))
	for i := range results {
		items[i] = searchResultToDTO(&results[i])
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchResponse{Results: items})
}

// ShowResults handles POST /show_results.
func (s *Server) ShowResults(w http.ResponseWriter, r *http.Request) {
	var urls []string
	if !s.decode(w, r, &urls) {
		return
	}

	visits, err := s.search.Show(r.Context(), urls)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]PageResultItem, len(visits))
	for i := range visits {
		items[i] = visitToDTO(&visits[i])
	}

	writeJSON(w, http.StatusOK, ShowResponse{Results: items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// decode reads a size-limited JSON body into v, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodeBadRequest,
				"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return false
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func searchQueryFromDTO(req *SearchRequest, maxTopK int) (query.Query, error) {
	topK := 0
	if req.TopK != nil {
		topK = *req.TopK
		if topK <= 0 {
			return query.Query{}, errors.New("top_k must be positive")
		}
	}
	var minScore float64
	if req.MinScore != nil {
		minScore = *req.MinScore
	}
	return query.New(req.Query, topK, minScore, req.Domain, utcPtr(req.Since), utcPtr(req.Until), maxTopK)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Calls() == 0 {
		return
	}
	w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.Tokens()))
	cache := "miss"
	if usage.AllCached() {
		cache = "hit"
	}
	w.Header().Set("X-Embedding-Cache", cache)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrRateLimited,
		domain.ErrEmbeddingQuotaExceeded,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler reports invalid input with its full message.
func validationHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidInput) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.logger.Info("request canceled", zap.Error(err))
		writeError(w, statusClientClosedRequest, ErrorCodeRequestCanceled, "request canceled")
		return
	}
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
