package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/betbot/opsboard/internal/alerting"
	"github.com/betbot/opsboard/internal/fixture"
	"github.com/betbot/opsboard/internal/views"
	"github.com/betbot/opsboard/pkg/artifact"
	"github.com/betbot/opsboard/pkg/cache"
	"github.com/betbot/opsboard/pkg/sigchan"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

var log = logrus.WithField("module", "console")

type Config struct {
	DBPath      string
	ArtifactDir string // 为空时产物只保存在内存中
	ArtifactTTL time.Duration

	Location    *time.Location
	ViewPeriod  time.Duration
	ClockPeriod time.Duration

	Seed    int64
	Symbols []string
	Now     func() time.Time // 测试注入

	AlertsEnabled bool
	AlertInterval time.Duration // 告警评估周期，<= 0 使用 ViewPeriod
	AlertCooldown time.Duration
	LarkWebhook   string
	LarkTimeout   time.Duration
}

type Server struct {
	cfg Config
	db  *sql.DB

	gen       *fixture.Generator
	views     *views.Registry
	artifacts *artifact.Store
	engine    *alerting.Engine
	snapshots *cache.InMemoryCache[string, views.Snapshot]
	rulesKick *sigchan.Chan // 规则变更后尽快重新评估

	bgCtx    context.Context // 服务关闭时结束，用于断开 websocket
	bgCancel func()
	bgWG     sync.WaitGroup
}

func New(cfg Config) (*Server, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("db path is required")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite：单连接更稳定
	db.SetMaxIdleConns(1)

	s := &Server{cfg: cfg, db: db, rulesKick: sigchan.New()}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.artifacts, err = artifact.Open(artifact.OpenOptions{
		Path:     cfg.ArtifactDir,
		InMemory: strings.TrimSpace(cfg.ArtifactDir) == "",
		TTL:      cfg.ArtifactTTL,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open artifact store: %w", err)
	}

	s.gen = fixture.New(fixture.Options{Seed: cfg.Seed, Now: cfg.Now, Location: cfg.Location, Symbols: cfg.Symbols})
	s.views = views.NewDefaultRegistry(views.Deps{
		Fixtures:    s.gen,
		Alerts:      s,
		ViewPeriod:  cfg.ViewPeriod,
		ClockPeriod: cfg.ClockPeriod,
	})
	// REST 快照在一个刷新周期内复用，与页面的刷新节奏一致
	cacheTTL := cfg.ViewPeriod
	if cacheTTL <= 0 {
		cacheTTL = 3 * time.Second
	}
	s.snapshots = cache.NewInMemoryCache[string, views.Snapshot](cacheTTL, time.Minute)

	var notifiers []alerting.Notifier
	if strings.TrimSpace(cfg.LarkWebhook) != "" {
		notifiers = append(notifiers, alerting.NewLarkNotifier(alerting.LarkOptions{
			Webhook: cfg.LarkWebhook,
			Timeout: cfg.LarkTimeout,
			Retries: 2,
		}))
	}
	s.engine = alerting.NewEngine(s, alerting.Options{
		Cooldown:  cfg.AlertCooldown,
		Notifiers: notifiers,
		Now:       cfg.Now,
	})

	s.startBackground()
	return s, nil
}

func (s *Server) Close() error {
	if s.bgCancel != nil {
		s.bgCancel()
		s.bgWG.Wait()
	}
	if s.snapshots != nil {
		s.snapshots.Close()
	}
	var errs []error
	if s.artifacts != nil {
		errs = append(errs, s.artifacts.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}

func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.wrap(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	api := r.Group("/api")
	api.GET("/views", s.wrap(s.handleViewsList))
	api.GET("/clock", s.wrap(s.handleClock))
	api.GET("/dashboard", s.wrap(s.handleDashboard))

	accounts := api.Group("/accounts")
	accounts.GET("/balances", s.wrap(s.handleAccountBalances))
	accounts.GET("/transfers", s.wrap(s.handleAccountTransfers))
	accounts.GET("/trend", s.wrap(s.handleAccountTrend))

	api.GET("/orders", s.wrap(s.handleOrders))

	trades := api.Group("/trades")
	trades.GET("", s.wrap(s.handleTrades))
	trades.GET("/stats", s.wrap(s.handleTradeStats))
	trades.GET("/pnl_distribution", s.wrap(s.handleTradePnLDistribution))

	reports := api.Group("/reports")
	reports.GET("/daily", s.wrap(s.handleReportDaily))
	reports.GET("/pnl_by_pair", s.wrap(s.handleReportPairPnL))
	reports.GET("/net_value", s.wrap(s.handleReportNetValue))

	api.GET("/fees/:symbol", s.wrap(s.handleFees))
	api.GET("/orderbook/:symbol", s.wrap(s.handleOrderBook))

	alerts := api.Group("/alerts")
	alerts.GET("/rules", s.wrap(s.handleAlertRulesList))
	alerts.POST("/rules", s.wrap(s.handleAlertRuleCreate))
	alerts.PUT("/rules/:ruleID", s.wrap(s.handleAlertRuleUpdate))
	alerts.DELETE("/rules/:ruleID", s.wrap(s.handleAlertRuleDelete))
	alerts.GET("/events", s.wrap(s.handleAlertEventsList))
	alerts.POST("/events/:eventID/handle", s.wrap(s.handleAlertEventHandle))
	alerts.GET("/stats", s.wrap(s.handleAlertStats))
	alerts.POST("/evaluate", s.wrap(s.handleAlertEvaluateNow))

	api.GET("/export/:file", s.wrap(s.handleExport))
	exports := api.Group("/exports")
	exports.GET("/runs", s.wrap(s.handleExportRunsList))
	exports.GET("/runs/:runID/download", s.wrap(s.handleExportDownload))

	r.GET("/ws/views/:view", s.wrap(s.handleViewStream))

	// UI
	r.GET("/", s.wrap(s.handleUI))

	return r
}

type paramsKeyType string

const paramsKey paramsKeyType = "opsboard_path_params"

// wrap adapts net/http handlers to gin, injecting path params into request context.
func (s *Server) wrap(h func(http.ResponseWriter, *http.Request)) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := map[string]string{}
		for _, p := range c.Params {
			m[p.Key] = p.Value
		}
		ctx := context.WithValue(c.Request.Context(), paramsKey, m)
		c.Request = c.Request.WithContext(ctx)
		h(c.Writer, c.Request)
	}
}
