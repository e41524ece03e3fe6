// Comando refresh executa uma única rodada do monitor, para agendadores
// externos (cron do sistema, jobs do Kubernetes).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bot-afiliados/config"
	"bot-afiliados/internal/app"
	"bot-afiliados/internal/bot"
	"bot-afiliados/internal/logger"
	"bot-afiliados/internal/monitor"
)

const passRelink = "relink"

func main() {
	pass := flag.String("pass", monitor.PassPrices, "rodada a executar: "+strings.Join(append(monitor.Passes, passRelink), "|"))
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	zl, err := logger.New(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatalf("Erro ao criar logger: %v", err)
	}
	defer zl.Sync()

	if err := run(*pass, zl); err != nil {
		zl.Error("Rodada falhou", zap.String("pass", *pass), zap.Error(err))
		zl.Sync()
		os.Exit(1)
	}
}

func run(pass string, zl *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("carregando configurações: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Só as rodadas que notificam precisam falar com o Telegram
	var api *tgbotapi.BotAPI
	if pass == monitor.PassPrices || pass == monitor.PassDeals || pass == monitor.PassDigest {
		if api, err = bot.Init(cfg.TelegramBotToken, zl); err != nil {
			return err
		}
	}

	a, err := app.New(ctx, cfg, api, zl)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Catalog.SeedDefaults(ctx); err != nil {
		return err
	}

	if pass == passRelink {
		n, err := a.Catalog.RegenerateAffiliateLinks(ctx, 0)
		if err != nil {
			return err
		}
		zl.Info("Links de afiliado regenerados", zap.Int("updated", n))
		return nil
	}
	return a.Monitor.RunPass(ctx, pass)
}
