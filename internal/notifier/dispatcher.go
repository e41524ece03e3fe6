package notifier

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"bot-afiliados/internal/metrics"
	"bot-afiliados/internal/models"
)

// Sender entrega uma mensagem a um chat
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Recipients é a fonte de destinatários e onde ficam registradas as desativações
type Recipients interface {
	ListNotifiableUsers(ctx context.Context) ([]models.User, error)
	ListDealGroups(ctx context.Context) ([]models.Group, error)
	DeactivateUser(ctx context.Context, telegramID int64) error
	DeactivateGroup(ctx context.Context, chatID int64) error
}

// Dispatcher entrega alertas de preço e ofertas do dia aos usuários e grupos
type Dispatcher struct {
	sender Sender
	store  Recipients
	delay  time.Duration
	log    *zap.Logger
	wait   func(ctx context.Context) error
}

// NewDispatcher cria um Dispatcher; delay é o intervalo fixo entre envios
func NewDispatcher(sender Sender, store Recipients, delay time.Duration, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{sender: sender, store: store, delay: delay, log: log}
	d.wait = d.sleep
	return d
}

type recipient struct {
	chatID int64
	group  bool
}

// delivery acompanha uma rodada de envios: quem já foi desativado e se
// o próximo envio precisa esperar
type delivery struct {
	kind    string
	dead    map[int64]bool
	started bool
}

// NotifyPriceDrops envia um alerta por queda para cada usuário com alertas
// ligados. Retorna quantas mensagens foram entregues.
func (d *Dispatcher) NotifyPriceDrops(ctx context.Context, drops []models.PriceDrop) int {
	if len(drops) == 0 {
		return 0
	}

	users, err := d.store.ListNotifiableUsers(ctx)
	if err != nil {
		d.log.Error("Erro ao buscar usuários para alertas", zap.Error(err))
		return 0
	}
	recipients := make([]recipient, 0, len(users))
	for _, u := range users {
		recipients = append(recipients, recipient{chatID: u.TelegramID})
	}

	run := &delivery{kind: "price_drop", dead: map[int64]bool{}}
	sent := 0
	for _, drop := range drops {
		text := FormatPriceDrop(drop)
		n, ok := d.deliver(ctx, run, recipients, text)
		sent += n
		if !ok {
			break
		}
		d.log.Info("Alerta de queda de preço enviado",
			zap.Int64("product_id", drop.Product.ID), zap.Int("sent", n))
	}
	return sent
}

// NotifyDailyDeals envia o resumo das ofertas do dia para usuários e grupos
func (d *Dispatcher) NotifyDailyDeals(ctx context.Context, deals []models.Product) int {
	if len(deals) == 0 {
		d.log.Info("Nenhuma oferta do dia para enviar")
		return 0
	}

	users, err := d.store.ListNotifiableUsers(ctx)
	if err != nil {
		d.log.Error("Erro ao buscar usuários para ofertas do dia", zap.Error(err))
		return 0
	}
	groups, err := d.store.ListDealGroups(ctx)
	if err != nil {
		// grupos são opcionais: segue só com usuários
		d.log.Error("Erro ao buscar grupos para ofertas do dia", zap.Error(err))
	}

	recipients := make([]recipient, 0, len(users)+len(groups))
	for _, u := range users {
		recipients = append(recipients, recipient{chatID: u.TelegramID})
	}
	for _, g := range groups {
		recipients = append(recipients, recipient{chatID: g.ChatID, group: true})
	}

	run := &delivery{kind: "daily_deals", dead: map[int64]bool{}}
	sent, _ := d.deliver(ctx, run, recipients, FormatDailyDeals(deals))
	d.log.Info("Ofertas do dia enviadas", zap.Int("sent", sent), zap.Int("recipients", len(recipients)))
	return sent
}

// deliver envia text a cada destinatário. Retorna false quando o contexto
// foi cancelado no meio da rodada.
func (d *Dispatcher) deliver(ctx context.Context, run *delivery, recipients []recipient, text string) (int, bool) {
	sent := 0
	for _, r := range recipients {
		if run.dead[r.chatID] {
			continue
		}

		if run.started {
			if err := d.wait(ctx); err != nil {
				return sent, false
			}
		}
		run.started = true

		err := d.sender.Send(ctx, r.chatID, text)
		switch {
		case err == nil:
			sent++
			metrics.NotificationsSent.WithLabelValues(run.kind, "sent").Inc()
		case errors.Is(err, ErrRecipientUnreachable):
			metrics.NotificationsSent.WithLabelValues(run.kind, "unreachable").Inc()
			run.dead[r.chatID] = true
			d.deactivate(ctx, r, err)
		case ctx.Err() != nil:
			return sent, false
		default:
			metrics.NotificationsSent.WithLabelValues(run.kind, "failed").Inc()
			d.log.Warn("Erro ao enviar notificação", zap.Int64("chat_id", r.chatID), zap.Error(err))
		}
	}
	return sent, true
}

func (d *Dispatcher) deactivate(ctx context.Context, r recipient, cause error) {
	var err error
	if r.group {
		d.log.Info("Grupo inacessível, desativando", zap.Int64("chat_id", r.chatID), zap.Error(cause))
		err = d.store.DeactivateGroup(ctx, r.chatID)
	} else {
		d.log.Info("Usuário bloqueou o bot, desativando", zap.Int64("telegram_id", r.chatID), zap.Error(cause))
		err = d.store.DeactivateUser(ctx, r.chatID)
	}
	if err != nil {
		d.log.Error("Erro ao desativar destinatário", zap.Int64("chat_id", r.chatID), zap.Error(err))
	}
}

// sleep espera o intervalo entre envios ou o cancelamento de ctx
func (d *Dispatcher) sleep(ctx context.Context) error {
	if d.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
