package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docqa/internal/domain"
	"docqa/internal/service"
)

// SessionHeader carries the session ID on every request and response.
const SessionHeader = "X-Session-ID"

const sweepInterval = time.Minute

// Server exposes the document analyzer over HTTP. Each caller gets its own
// analyzer, looked up by the X-Session-ID header.
type Server struct {
	e        *echo.Echo
	sessions *SessionRegistry
	metrics  *metrics
	logger   *log.Logger
}

// New wires the routes and the session registry. build is invoked once per
// new session to give it a private analyzer.
func New(sessionTTL time.Duration, build NewAnalyzerFunc, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		e:        echo.New(),
		sessions: NewSessionRegistry(sessionTTL, build),
		metrics:  newMetrics(),
		logger:   logger,
	}
	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.Use(middleware.Recover())
	s.e.HTTPErrorHandler = s.errorHandler

	s.e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	s.e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	api := s.e.Group("/api")
	api.POST("/documents", s.handleIngest)
	api.POST("/questions", s.handleAsk)
	api.GET("/history", s.handleHistory)
	api.DELETE("/history", s.handleClearHistory)
	api.DELETE("/answer", s.handleClearAnswer)
	api.GET("/session", s.handleSession)

	return s
}

// Run serves until the listener fails. Expired sessions are swept in the
// background for the life of the process.
func (s *Server) Run(addr string) error {
	go s.sessions.sweepLoop(sweepInterval)
	s.logger.Info("server listening", "addr", addr)
	return s.e.Start(addr)
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := err.Error()
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			msg = m
		}
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "err", err)
	}
	if writeErr := c.JSON(code, map[string]string{"error": msg}); writeErr != nil {
		s.logger.Error("write error response", "err", writeErr)
	}
}

// session resolves the caller's analyzer and echoes the session ID back on
// the response so new clients learn theirs.
func (s *Server) session(c echo.Context) (*service.Analyzer, error) {
	id, analyzer, err := s.sessions.Ensure(c.Request().Header.Get(SessionHeader))
	if err != nil {
		s.metrics.recordError(err)
		return nil, httpError(err)
	}
	c.Response().Header().Set(SessionHeader, id)
	return analyzer, nil
}

type askRequest struct {
	Question string `json:"question"`
}

type sourceJSON struct {
	Text  string  `json:"text"`
	Page  int     `json:"page,omitempty"`
	Score float64 `json:"score"`
}

type answerJSON struct {
	Answer  string       `json:"answer"`
	Sources []sourceJSON `json:"sources"`
}

type documentJSON struct {
	DocHash    string `json:"doc_hash"`
	PageCount  int    `json:"page_count"`
	ChunkCount int    `json:"chunk_count"`
	Oversized  bool   `json:"oversized,omitempty"`
	Reused     bool   `json:"reused"`
}

type historyEntryJSON struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

type sessionJSON struct {
	Ready         bool          `json:"ready"`
	Document      *documentJSON `json:"document,omitempty"`
	HistoryLength int           `json:"history_length"`
}

func (s *Server) handleIngest(c echo.Context) error {
	analyzer, err := s.session(c)
	if err != nil {
		return err
	}
	data, err := readDocument(c)
	if err != nil {
		return err
	}
	start := time.Now()
	summary, err := analyzer.Ingest(c.Request().Context(), data)
	if err != nil {
		s.metrics.recordError(err)
		return httpError(err)
	}
	s.metrics.documentsTotal.Inc()
	s.metrics.ingestSeconds.Observe(time.Since(start).Seconds())
	return c.JSON(http.StatusCreated, toDocumentJSON(summary))
}

func (s *Server) handleAsk(c echo.Context) error {
	analyzer, err := s.session(c)
	if err != nil {
		return err
	}
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	result, err := analyzer.Ask(c.Request().Context(), req.Question)
	if err != nil {
		s.metrics.recordError(err)
		return httpError(err)
	}
	s.metrics.questionsTotal.Inc()
	resp := answerJSON{Answer: result.Answer, Sources: make([]sourceJSON, 0, len(result.Sources))}
	for _, src := range result.Sources {
		resp.Sources = append(resp.Sources, sourceJSON{Text: src.Text, Page: src.Page, Score: src.Score})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHistory(c echo.Context) error {
	analyzer, err := s.session(c)
	if err != nil {
		return err
	}
	entries := analyzer.History()
	resp := make([]historyEntryJSON, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, historyEntryJSON{Question: e.Question, Answer: e.Answer, AskedAt: e.AskedAt})
	}
	return c.JSON(http.StatusOK, map[string]any{"entries": resp})
}

func (s *Server) handleClearHistory(c echo.Context) error {
	analyzer, err := s.session(c)
	if err != nil {
		return err
	}
	analyzer.ClearHistory()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleClearAnswer(c echo.Context) error {
	analyzer, err := s.session(c)
	if err != nil {
		return err
	}
	analyzer.ClearAnswer()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSession(c echo.Context) error {
	analyzer, err := s.session(c)
	if err != nil {
		return err
	}
	resp := sessionJSON{Ready: analyzer.Ready(), HistoryLength: len(analyzer.History())}
	if summary, ok := analyzer.Current(); ok {
		doc := toDocumentJSON(summary)
		resp.Document = &doc
	}
	return c.JSON(http.StatusOK, resp)
}

// readDocument accepts either a multipart upload under the "file" field or a
// raw PDF body.
func readDocument(c echo.Context) ([]byte, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "open upload: "+err.Error())
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "read upload: "+err.Error())
		}
		return data, nil
	}
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "read body: "+err.Error())
	}
	if len(data) == 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "request carried no document")
	}
	return data, nil
}

func toDocumentJSON(summary service.Summary) documentJSON {
	return documentJSON{
		DocHash:    summary.DocHashPrefix,
		PageCount:  summary.PageCount,
		ChunkCount: summary.ChunkCount,
		Oversized:  summary.Oversized,
		Reused:     summary.Reused,
	}
}

// httpError maps pipeline errors onto HTTP statuses. Client mistakes come
// back 4xx, upstream model trouble 502.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, domain.ErrEmptyQuestion):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNoDocument):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrExtraction):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrEmbedding), errors.Is(err, domain.ErrSynthesis):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
