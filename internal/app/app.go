// Package app monta os componentes compartilhados pelos executáveis.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bot-afiliados/config"
	"bot-afiliados/internal/affiliate"
	"bot-afiliados/internal/catalog"
	"bot-afiliados/internal/database"
	"bot-afiliados/internal/lock"
	"bot-afiliados/internal/monitor"
	"bot-afiliados/internal/notifier"
	"bot-afiliados/internal/pricing"
	"bot-afiliados/internal/scraper"
)

// App reúne as dependências já conectadas
type App struct {
	DB         *database.DB
	Catalog    *catalog.Service
	Monitor    *monitor.Monitor
	Dispatcher *notifier.Dispatcher
	Validator  *affiliate.Validator

	redis *redis.Client
	log   *zap.Logger
}

// New abre o banco, escolhe as travas e a fonte de preços e monta o monitor.
// api pode ser nil: nesse caso nenhuma notificação é enviada.
func New(ctx context.Context, cfg *config.Config, api *tgbotapi.BotAPI, log *zap.Logger) (*App, error) {
	dir, err := affiliate.LoadDirectory(cfg.StoresFile)
	if err != nil {
		return nil, err
	}

	var db *database.DB
	if cfg.DatabaseDriver != "" {
		db, err = database.Open(cfg.DatabaseDriver, cfg.DatabaseURL, log)
	} else {
		db, err = database.New(cfg.DatabaseURL, log)
	}
	if err != nil {
		return nil, fmt.Errorf("inicializando banco de dados: %w", err)
	}

	a := &App{DB: db, log: log}

	locker, err := a.locker(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	links := affiliate.NewGenerator(cfg.Affiliate, log)
	for _, n := range affiliate.Networks {
		if !links.Configured(n) {
			log.Warn("Rede de afiliados sem credencial, links sem rastreio", zap.String("network", n.String()))
		}
	}

	registry := scraper.NewRegistry(scraper.NewFetcher(cfg.UserAgent, cfg.RequestDelay), log)
	a.Catalog = catalog.NewService(db, links, dir, log)
	a.Validator = affiliate.NewValidator(log)

	deps := monitor.Deps{
		Store:    db,
		Prices:   priceSource(cfg, registry, log),
		Locker:   locker,
		Scraper:  registry,
		Importer: a.Catalog,
	}
	if api != nil {
		a.Dispatcher = notifier.NewDispatcher(notifier.NewTelegramSender(api, log), db, cfg.NotifyDelay, log)
		deps.Notifier = a.Dispatcher
	}
	a.Monitor = monitor.New(deps, monitor.OptionsFromConfig(cfg), log)
	return a, nil
}

func priceSource(cfg *config.Config, registry *scraper.Registry, log *zap.Logger) pricing.Source {
	if strings.EqualFold(cfg.PriceSource, "scraper") {
		log.Info("Preços lidos das páginas das lojas")
		return pricing.NewScraped(registry, cfg.RequestDelay, log)
	}
	log.Info("Preços simulados", zap.Float64("min_price", cfg.Refresh.MinPrice))
	return pricing.NewSimulated(time.Now().UnixNano(), cfg.Refresh.MinPrice)
}

// locker usa o Redis quando configurado, para que vários processos
// compartilhem as travas das rodadas
func (a *App) locker(ctx context.Context, cfg *config.Config) (lock.Locker, error) {
	if cfg.RedisAddr == "" {
		return lock.NewLocal(), nil
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.redis.Ping(pingCtx).Err(); err != nil {
		a.redis.Close()
		return nil, fmt.Errorf("conectando ao redis %s: %w", cfg.RedisAddr, err)
	}
	a.log.Info("Travas compartilhadas via redis", zap.String("addr", cfg.RedisAddr))
	return lock.NewRedis(a.redis, a.log), nil
}

// Close libera as conexões
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("Erro ao fechar redis", zap.Error(err))
		}
	}
	if err := a.DB.Close(); err != nil {
		a.log.Warn("Erro ao fechar banco", zap.Error(err))
	}
}
