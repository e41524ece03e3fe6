package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"bot-afiliados/config"
	"bot-afiliados/internal/affiliate"
	"bot-afiliados/internal/catalog"
	"bot-afiliados/internal/database"
	"bot-afiliados/internal/monitor"
)

// Init inicializa o bot do Telegram
func Init(token string, log *zap.Logger) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN não configurado. Verifique o arquivo .env")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		if err.Error() == "Unauthorized" {
			return nil, fmt.Errorf("token do Telegram inválido ou expirado. Verifique o TELEGRAM_BOT_TOKEN no arquivo .env. Para obter um token, fale com @BotFather no Telegram")
		}
		return nil, fmt.Errorf("erro ao conectar com Telegram: %w", err)
	}

	bot.Debug = false
	log.Info("Bot autorizado", zap.String("username", bot.Self.UserName))
	return bot, nil
}

// Listen começa a receber atualizações por long polling
func Listen(bot *tgbotapi.BotAPI) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	return bot.GetUpdatesChan(u)
}

// API é a parte da API do Telegram usada pelos comandos
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Deps são as dependências do Handler
type Deps struct {
	API       API
	DB        *database.DB
	Catalog   *catalog.Service
	Monitor   *monitor.Monitor
	Validator *affiliate.Validator
	Config    *config.Config
}

// Handler trata os comandos recebidos pelo bot
type Handler struct {
	api       API
	db        *database.DB
	catalog   *catalog.Service
	monitor   *monitor.Monitor
	validator *affiliate.Validator
	cfg       *config.Config
	log       *zap.Logger
}

// New cria o Handler
func New(deps Deps, log *zap.Logger) *Handler {
	return &Handler{
		api:       deps.API,
		db:        deps.DB,
		catalog:   deps.Catalog,
		monitor:   deps.Monitor,
		validator: deps.Validator,
		cfg:       deps.Config,
		log:       log,
	}
}

// Run processa as atualizações até ctx ser cancelado ou o canal fechar
func (h *Handler) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	h.log.Info("Bot aguardando comandos")
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, update)
		}
	}
}

// trackedLink devolve o link que o usuário deve abrir: o redirecionamento
// rastreado quando há URL pública configurada, senão o link de afiliado
func (h *Handler) trackedLink(productID, telegramID int64, affiliateURL string) string {
	base := strings.TrimRight(h.cfg.PublicBaseURL, "/")
	if base == "" {
		return affiliateURL
	}
	return fmt.Sprintf("%s/go/%d?u=%d", base, productID, telegramID)
}
