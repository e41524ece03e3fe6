package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bot-afiliados/config"
	"bot-afiliados/internal/app"
	"bot-afiliados/internal/bot"
	"bot-afiliados/internal/logger"
	"bot-afiliados/internal/monitor"
	"bot-afiliados/internal/server"
)

func main() {
	// Carregar variáveis de ambiente
	if err := godotenv.Load(); err != nil {
		log.Println("Arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	zl, err := logger.New(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatalf("Erro ao criar logger: %v", err)
	}
	defer zl.Sync()

	// Carregar configurações
	cfg, err := config.Load()
	if err != nil {
		zl.Fatal("Erro ao carregar configurações", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Inicializar bot do Telegram
	api, err := bot.Init(cfg.TelegramBotToken, zl)
	if err != nil {
		zl.Fatal("Erro ao inicializar bot do Telegram", zap.Error(err))
	}

	a, err := app.New(ctx, cfg, api, zl)
	if err != nil {
		zl.Fatal("Erro ao inicializar aplicação", zap.Error(err))
	}
	defer a.Close()

	if err := a.Catalog.SeedDefaults(ctx); err != nil {
		zl.Fatal("Erro ao popular categorias e lojas", zap.Error(err))
	}

	scheduler, err := monitor.NewScheduler(a.Monitor, monitor.ScheduleFromConfig(cfg), zl)
	if err != nil {
		zl.Fatal("Erro ao agendar monitor", zap.Error(err))
	}

	srv := server.New(cfg.HTTPAddr, server.NewRouter(a.DB, a.Monitor, a.Catalog, zl), zl)
	handler := bot.New(bot.Deps{
		API:       api,
		DB:        a.DB,
		Catalog:   a.Catalog,
		Monitor:   a.Monitor,
		Validator: a.Validator,
		Config:    cfg,
	}, zl)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scheduler.Start(ctx)
		return nil
	})
	g.Go(func() error {
		return srv.Run(ctx)
	})
	g.Go(func() error {
		handler.Run(ctx, bot.Listen(api))
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		zl.Info("Encerrando bot...")
		api.StopReceivingUpdates()
		return nil
	})

	if err := g.Wait(); err != nil {
		zl.Error("Bot encerrado com erro", zap.Error(err))
		return
	}
	zl.Info("Bot encerrado")
}
