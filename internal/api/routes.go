package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"vachan/backend/internal/ai"
	"vachan/backend/internal/cache"
	"vachan/backend/internal/claims"
	"vachan/backend/internal/factcheck"
	"vachan/backend/internal/match"
	"vachan/backend/internal/news"
	"vachan/backend/internal/store"
	"vachan/backend/internal/util"
)

const (
	msgNoText          = "No text provided for fact-checking"
	msgFactCheckFailed = "Failed to process fact-checking request"
	msgNoMessages      = "No messages provided"
	msgChatFailed      = "Failed to generate response"
	msgInternal        = "Internal server error"
	msgNoClaimsKey     = "Google API Key not configured. Please set the GOOGLE_API_KEY environment variable."
	msgNoQuery         = "Missing 'query' parameter"

	defaultRecentLimit = 10
	maxRecentLimit     = 100
	defaultBacklog     = 20
)

// Config defines server dependencies.
type Config struct {
	DBPath         string
	SilentDB       bool
	AllowedOrigins []string
	DisableAI      bool
	AIConfig       ai.Config
	CacheConfig    cache.Config
	Claims         claims.Config
	RateLimitRPS   float64
	RateLimitBurst int
	StreamBacklog  int

	// Generator replaces the configured model backend when set.
	Generator ai.Generator
	// Random drives the fallback noise; nil uses the process source.
	Random factcheck.RandomSource
}

// Server wires HTTP handlers with persistence, the checkers and the news feed.
type Server struct {
	db             *store.Database
	allowedOrigins []string
	checker        *ai.FactChecker
	chatbot        *ai.Chatbot
	catalog        *news.Catalog
	claims         *claims.Client
	reports        cache.Reports
	notifier       *FactCheckNotifier
	limiter        *clientLimiter
}

// NewServer constructs the API server.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("db path required")
	}
	db, err := store.Open(cfg.DBPath, cfg.SilentDB)
	if err != nil {
		return nil, err
	}

	var gen ai.Generator
	switch {
	case cfg.DisableAI:
		logrus.Info("AI model disabled via configuration, using fallback only")
	case cfg.Generator != nil:
		gen = cfg.Generator
	default:
		g, err := ai.NewGenerator(ctx, cfg.AIConfig)
		switch {
		case err == nil:
			gen = g
		case errors.Is(err, ai.ErrDisabled):
			logrus.Info("no AI credentials configured, using fallback only")
		default:
			_ = db.Close()
			return nil, fmt.Errorf("ai generator: %w", err)
		}
	}
	if gen != nil {
		logrus.WithField("model", gen.Model()).Info("AI model enabled")
	}

	reports, err := cache.New(ctx, cfg.CacheConfig)
	if err != nil {
		logrus.WithError(err).Warn("report cache unavailable, using in-memory cache")
		reports = cache.NewMemory(cfg.CacheConfig.TTL)
	}

	fallback := factcheck.NewFallback(cfg.Random)
	var primary ai.Checker
	if gen != nil {
		primary = ai.NewModelChecker(gen, cfg.AIConfig.Timeout)
	}

	catalog, err := news.LoadSeed()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("news catalog: %w", err)
	}

	claimSearch, err := claims.NewClient(cfg.Claims)
	if err != nil {
		logrus.WithError(err).Info("claim search disabled")
	}

	backlog := cfg.StreamBacklog
	if backlog == 0 {
		backlog = defaultBacklog
	}

	return &Server{
		db:             db,
		allowedOrigins: cfg.AllowedOrigins,
		checker:        ai.WithFallback(primary, fallback, reports),
		chatbot:        ai.NewChatbot(gen, cfg.AIConfig.Timeout),
		catalog:        catalog,
		claims:         claimSearch,
		reports:        reports,
		notifier:       NewFactCheckNotifier(backlog),
		limiter:        newClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}, nil
}

// Close releases the database handle and any remote cache connection.
func (s *Server) Close() error {
	if closer, ok := s.reports.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logrus.WithError(err).Warn("close report cache")
		}
	}
	return s.db.Close()
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger(), recoverWith(msgInternal))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/api/config", s.handleConfig)

	limited := s.limiter.middleware()
	api := r.Group("/api")
	{
		api.POST("/fact-check", limited, recoverWith(msgFactCheckFailed), s.handleFactCheck)
		api.GET("/fact-checks/recent", s.handleRecent)
		api.GET("/fact-checks/stats", s.handleStats)
		api.GET("/fact-checks/stream", s.handleStream)
		api.GET("/fact-checks/:id", s.handleGetFactCheck)
		api.POST("/chat", limited, recoverWith(msgChatFailed), s.handleChat)
		api.GET("/claims/search", limited, s.handleClaimSearch)
		api.GET("/news", s.handleNews)
		api.GET("/news/trending", s.handleTrending)
		api.GET("/news/articles/:slug", s.handleArticle)
	}

	return r, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, ConfigResponse{
		PrimaryEnabled: s.checker.PrimaryEnabled(),
		PrimaryModel:   s.checker.PrimaryModel(),
		FallbackModel:  factcheck.FallbackModel,
		ChatEnabled:    s.chatbot.Enabled(),
		Thresholds: ThresholdsDTO{
			UnverifiedBelow: factcheck.UnverifiedBelow,
			MisleadingBelow: factcheck.MisleadingBelow,
			NoiseRange:      factcheck.NoiseRange,
		},
		Indicators: IndicatorsDTO{
			Fake: factcheck.FakeIndicators(),
			Real: factcheck.RealIndicators(),
		},
		Labels: factcheck.Labels(),
	})
}

func (s *Server) handleFactCheck(c *gin.Context) {
	var req factcheck.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Error("decode fact-check request")
		s.renderMessage(c, http.StatusInternalServerError, msgFactCheckFailed)
		return
	}

	timer := util.StartTimer()
	report, err := s.checker.Check(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, factcheck.ErrNoText) {
			s.renderMessage(c, http.StatusBadRequest, msgNoText)
			return
		}
		logrus.WithError(err).Error("fact-check request failed")
		s.renderMessage(c, http.StatusInternalServerError, msgFactCheckFailed)
		return
	}

	profile := match.NormalizeClaim(req.Text, req.Title, req.Source)
	row := store.NewFactCheck(report, profile.Fingerprint, profile.Preview, req.Title, req.Source, timer.ElapsedMs())
	if err := s.db.SaveFactCheck(row); err != nil {
		logrus.WithError(err).Warn("persist fact check")
	} else {
		s.announce(row)
	}

	logrus.WithFields(timer.Fields()).WithFields(logrus.Fields{
		"classification": report.Classification,
		"confidence":     report.Confidence,
		"model":          report.ModelUsed,
		"fallback":       report.IsFallback(),
	}).Info("fact check completed")

	c.JSON(http.StatusOK, report)
}

// announce pushes a persisted row, with fresh totals, to the live feed.
func (s *Server) announce(row *store.FactCheck) {
	dto := FactCheckFromModel(*row)
	event := FactCheckEvent{Type: "fact_check", FactCheck: &dto}
	if stats, err := s.db.FactCheckStats(); err == nil {
		statsDTO := StatsFromModel(stats)
		event.Stats = &statsDTO
	}
	s.notifier.Broadcast(event)
}

func (s *Server) handleRecent(c *gin.Context) {
	limit := defaultRecentLimit
	if value := strings.TrimSpace(c.Query("limit")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			s.renderError(c, http.StatusBadRequest, fmt.Errorf("invalid limit: %s", value))
			return
		}
		limit = min(parsed, maxRecentLimit)
	}
	offset, _ := strconv.Atoi(c.Query("offset"))
	if offset < 0 {
		offset = 0
	}

	query := store.FactCheckQuery{
		Offset:       offset,
		Limit:        limit,
		FallbackOnly: strings.EqualFold(strings.TrimSpace(c.Query("fallback")), "true"),
	}
	if value := strings.TrimSpace(c.Query("classification")); value != "" {
		label, ok := factcheck.ParseLabel(value)
		if !ok {
			s.renderError(c, http.StatusBadRequest, fmt.Errorf("unknown classification: %s", value))
			return
		}
		query.Classification = string(label)
	}

	rows, total, err := s.db.ListFactChecks(query)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	items := make([]FactCheckDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, FactCheckFromModel(row))
	}
	c.JSON(http.StatusOK, RecentResponse{Items: items, Total: total})
}

func (s *Server) handleGetFactCheck(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	row, err := s.db.GetFactCheck(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.renderError(c, http.StatusNotFound, fmt.Errorf("fact check %s not found", id))
		} else {
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return
	}
	c.JSON(http.StatusOK, FactCheckFromModel(*row))
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.db.FactCheckStats()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, StatsFromModel(stats))
}

func (s *Server) handleStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if len(s.allowedOrigins) == 0 || origin == "" {
				return true
			}
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}

	client := s.notifier.Register(conn)
	logrus.WithField("remote", conn.RemoteAddr().String()).Info("fact-check websocket connected")
	defer s.notifier.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", conn.RemoteAddr().String()).Info("fact-check websocket closed")
			} else {
				logrus.WithError(err).Warn("fact-check websocket unexpected close")
			}
			break
		}
	}
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Error("decode chat request")
		s.renderMessage(c, http.StatusInternalServerError, msgChatFailed)
		return
	}
	if len(req.Messages) == 0 {
		s.renderMessage(c, http.StatusBadRequest, msgNoMessages)
		return
	}

	timer := util.StartTimer()
	reply, err := s.chatbot.Reply(c.Request.Context(), req.Messages)
	if err != nil {
		if errors.Is(err, ai.ErrNoMessages) {
			s.renderMessage(c, http.StatusBadRequest, msgNoMessages)
			return
		}
		logrus.WithError(err).WithFields(timer.Fields()).Error("chat reply failed")
		s.renderMessage(c, http.StatusInternalServerError, msgChatFailed)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Response: reply,
		Metadata: ChatMetadata{
			ModelUsed:        s.chatbot.Model(),
			ProcessingTimeMs: timer.ElapsedMs(),
		},
	})
}

func (s *Server) handleClaimSearch(c *gin.Context) {
	if s.claims == nil {
		s.renderMessage(c, http.StatusInternalServerError, msgNoClaimsKey)
		return
	}
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		s.renderMessage(c, http.StatusBadRequest, msgNoQuery)
		return
	}

	result, err := s.claims.Search(c.Request.Context(), query, c.DefaultQuery("languageCode", claims.DefaultLanguage))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, claims.ErrUpstream):
		logrus.WithError(err).Warn("claim search upstream failure")
		s.renderMessage(c, http.StatusServiceUnavailable, "Error calling Google Fact Check API: "+err.Error())
	default:
		logrus.WithError(err).Error("claim search failed")
		s.renderMessage(c, http.StatusInternalServerError, "An unexpected error occurred: "+err.Error())
	}
}

func (s *Server) handleNews(c *gin.Context) {
	filter := news.Filter{
		Sources: splitQuery(c.Query("source")),
		Hashtag: c.Query("hashtag"),
		Query:   c.Query("q"),
	}
	for _, value := range splitQuery(c.Query("status")) {
		label, ok := factcheck.ParseLabel(value)
		if !ok {
			s.renderError(c, http.StatusBadRequest, fmt.Errorf("unknown status: %s", value))
			return
		}
		filter.Statuses = append(filter.Statuses, label)
	}
	if value := strings.TrimSpace(c.Query("date")); value != "" {
		day, err := time.Parse(time.DateOnly, value)
		if err != nil {
			s.renderError(c, http.StatusBadRequest, fmt.Errorf("invalid date: %s", value))
			return
		}
		filter.Date = day
	}

	items := s.catalog.List(filter)
	c.JSON(http.StatusOK, NewsResponse{Items: items, Total: len(items)})
}

func (s *Server) handleTrending(c *gin.Context) {
	limit := 0
	if value := strings.TrimSpace(c.Query("limit")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			s.renderError(c, http.StatusBadRequest, fmt.Errorf("invalid limit: %s", value))
			return
		}
		limit = parsed
	}
	c.JSON(http.StatusOK, TrendingResponse{Topics: s.catalog.Trending(limit)})
}

func (s *Server) handleArticle(c *gin.Context) {
	key := c.Param("slug")
	article, ok := s.catalog.Find(key)
	if !ok {
		s.renderError(c, http.StatusNotFound, fmt.Errorf("article %s not found", key))
		return
	}
	c.JSON(http.StatusOK, article)
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	s.renderMessage(c, status, err.Error())
}

func (s *Server) renderMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// recoverWith converts handler panics into a fixed 500 body.
func recoverWith(message string) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"panic": recovered,
		}).Error("handler panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": message})
	})
}

func splitQuery(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
