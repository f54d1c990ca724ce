package main

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"content-agent/apperr"
	"content-agent/config"
	"content-agent/models"
	"content-agent/providers"
	"content-agent/providers/gemini"
	"content-agent/providers/groq"
	"content-agent/services"
	"content-agent/storage"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("Unauthorized: Invalid API Key", "UNAUTHORIZED"))
			return
		}
		c.Next()
	}
}

// requestIDMiddleware übernimmt eine mitgeschickte Request-ID oder erzeugt eine neue.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Ohne Datenbank läuft der Dienst weiter: Schreiben schlägt fehl, Lesen liefert leere Ergebnisse.
	db, err := storage.OpenDB(cfg)
	if err != nil {
		logging.Error("Failed to connect to database, persistence is unavailable", zap.Error(err))
		db = nil
	}
	store := storage.NewAnalysisStore(db, logging)
	if db != nil {
		logging.Info("Running database auto-migration...")
		if err := store.Migrate(); err != nil {
			logging.Error("Auto-migration failed", zap.Error(err))
		}
	}

	// Provider-Clients werden erst bei der ersten Nutzung erzeugt.
	registry := providers.NewRegistry(logging, map[providers.Variant]providers.Factory{
		providers.Gemini: func() (providers.Provider, error) { return gemini.New(cfg, logging) },
		providers.Groq:   func() (providers.Provider, error) { return groq.New(cfg, logging) },
	})

	extractor := services.NewExtractor(cfg, logging)
	analysisService := services.NewAnalysisService(cfg, extractor, registry, store, logging)

	router := newRouter(cfg, analysisService, store, logging)

	// Setup Cron
	if cfg.ExportEnabled() {
		objects, err := storage.NewS3Store(cfg)
		if err != nil {
			logging.Error("S3 client creation failed, history export disabled", zap.Error(err))
		} else {
			exportService := services.NewExportService(cfg, store, objects, logging)
			cronScheduler := cron.New()
			_, err := cronScheduler.AddFunc(cfg.ExportSchedule, func() {
				logging.Info("Running scheduled history export...")
				if _, err := exportService.Run(context.Background()); err != nil {
					logging.Error("Cron job failed", zap.Error(err))
				}
			})
			if err != nil {
				logging.Fatal("Invalid EXPORT_SCHEDULE", zap.String("schedule", cfg.ExportSchedule), zap.Error(err))
			}
			cronScheduler.Start()
			defer cronScheduler.Stop()
		}
	}

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      180 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// healthChecker prüft die Erreichbarkeit der Datenbank.
type healthChecker interface {
	Ping(ctx context.Context) error
}

func newRouter(cfg *config.Config, analysisService *services.AnalysisService, db healthChecker, log *zap.Logger) *gin.Engine {
	router := gin.Default()
	router.Use(requestIDMiddleware())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupHealthRoutes(router, cfg, db)
	setupAnalysisRoutes(router, cfg, analysisService, log)
	return router
}

func setupHealthRoutes(router *gin.Engine, cfg *config.Config, db healthChecker) {
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
			"services": gin.H{
				"gemini_api": availability(cfg.GeminiAPIKey != ""),
				"groq_api":   availability(cfg.GroqAPIKey != ""),
				"database":   availability(db.Ping(ctx) == nil),
			},
		})
	})
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}

// analysisSummary ist ein Eintrag der Verlaufsliste.
type analysisSummary struct {
	ID            uint      `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	OverallRating float64   `json:"overall_rating"`
	AIProvider    string    `json:"ai_provider"`
	CreatedAt     time.Time `json:"created_at"`
}

func setupAnalysisRoutes(router *gin.Engine, cfg *config.Config, svc *services.AnalysisService, log *zap.Logger) {
	rg := router.Group("/api/analysis")
	rg.Use(apiKeyAuthMiddleware(cfg))

	rg.POST("/analyze", func(c *gin.Context) {
		var req struct {
			URL        string `json:"url" binding:"required"`
			AIProvider string `json:"aiProvider"`
		}
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("URL is required", string(apperr.InvalidInput)))
			return
		}

		log.Info("Analysis requested",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("url", req.URL),
			zap.String("provider", req.AIProvider))

		resp, err := svc.Analyze(c.Request.Context(), req.URL, req.AIProvider)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, struct {
			Success bool `json:"success"`
			*services.AnalysisResponse
		}{true, resp})
	})

	rg.GET("", func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		analyses := svc.List(c.Request.Context(), limit)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"total":   len(analyses),
			"analyses": lo.Map(analyses, func(a models.Analysis, _ int) analysisSummary {
				return analysisSummary{
					ID:            a.ID,
					URL:           a.URL,
					Title:         a.Title,
					OverallRating: a.OverallRating,
					AIProvider:    a.AIProvider,
					CreatedAt:     a.CreatedAt,
				}
			}),
		})
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		analysis, found := svc.Get(c.Request.Context(), id)
		if !found {
			c.JSON(http.StatusNotFound, errorBody("Analysis not found", string(apperr.NotFound)))
			return
		}
		c.JSON(http.StatusOK, struct {
			Success bool `json:"success"`
			*models.Analysis
		}{true, analysis})
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if !svc.Delete(c.Request.Context(), id) {
			c.JSON(http.StatusNotFound, errorBody("Analysis not found", string(apperr.NotFound)))
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Analysis deleted"})
	})
}

// parseID liest die numerische ID; ungültige IDs werden wie fehlende Datensätze behandelt.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, errorBody("Analysis not found", string(apperr.NotFound)))
		return 0, false
	}
	return uint(id), true
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), errorBody(apperr.Message(err), string(apperr.CodeOf(err))))
}

func errorBody(message, code string) gin.H {
	return gin.H{
		"success": false,
		"error": gin.H{
			"message": message,
			"code":    code,
		},
	}
}
