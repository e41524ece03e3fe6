package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// ErrRecipientUnreachable indica falha permanente: o destinatário bloqueou o
// bot, foi desativado ou o chat não existe mais
var ErrRecipientUnreachable = errors.New("destinatário inacessível")

var permanentFailures = []string{
	"bot was blocked",
	"user is deactivated",
	"chat not found",
	"bot was kicked",
	"bot is not a member",
}

// TelegramSender envia mensagens HTML pelo bot do Telegram
type TelegramSender struct {
	bot *tgbotapi.BotAPI
	log *zap.Logger
}

// NewTelegramSender cria um Sender sobre a API do bot
func NewTelegramSender(bot *tgbotapi.BotAPI, log *zap.Logger) *TelegramSender {
	return &TelegramSender{bot: bot, log: log}
}

// Send envia text em HTML; se o Telegram recusar a formatação, tenta sem formatação
func (s *TelegramSender) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := s.bot.Send(msg)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "can't parse entities") {
		s.log.Warn("Erro de formatação HTML, reenviando sem formatação", zap.Int64("chat_id", chatID), zap.Error(err))
		msg.ParseMode = ""
		_, err = s.bot.Send(msg)
	}
	return classify(err)
}

// classify converte erros permanentes do Telegram em ErrRecipientUnreachable
func classify(err error) error {
	if err == nil {
		return nil
	}

	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) && tgErr.Code == http.StatusForbidden {
		return fmt.Errorf("%w: %v", ErrRecipientUnreachable, err)
	}

	text := strings.ToLower(err.Error())
	for _, p := range permanentFailures {
		if strings.Contains(text, p) {
			return fmt.Errorf("%w: %v", ErrRecipientUnreachable, err)
		}
	}
	return err
}
