package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"bot-afiliados/internal/catalog"
	"bot-afiliados/internal/database"
	"bot-afiliados/internal/metrics"
	"bot-afiliados/internal/models"
	"bot-afiliados/internal/monitor"
)

const listLimit = 10

const genericError = "😕 Desculpe, algo deu errado. Tente novamente em instantes."

type command struct {
	run   func(h *Handler, ctx context.Context, msg *tgbotapi.Message, args []string)
	admin bool
}

var commands = map[string]command{
	"/start":             {run: (*Handler).handleStart},
	"/help":              {run: (*Handler).handleHelp},
	"/deals":             {run: (*Handler).handleDeals},
	"/categories":        {run: (*Handler).handleCategories},
	"/category":          {run: (*Handler).handleCategory},
	"/search":            {run: (*Handler).handleSearch},
	"/link":              {run: (*Handler).handleLink},
	"/notifications":     {run: (*Handler).handleNotifications},
	"/prefs":             {run: (*Handler).handlePrefs},
	"/authorize_group":   {run: (*Handler).handleAuthorizeGroup},
	"/deauthorize_group": {run: (*Handler).handleDeauthorizeGroup},
	"/group_deals":       {run: (*Handler).handleGroupDeals},
	"/admin":             {run: (*Handler).handleAdmin, admin: true},
	"/addproduct":        {run: (*Handler).handleAddProduct, admin: true},
	"/scrapeproducts":    {run: (*Handler).handleScrapeProducts, admin: true},
	"/refresh":           {run: (*Handler).handleRefresh, admin: true},
	"/relink":            {run: (*Handler).handleRelink, admin: true},
	"/validate":          {run: (*Handler).handleValidate, admin: true},
	"/commission":        {run: (*Handler).handleCommission, admin: true},
	"/toggle":            {run: (*Handler).handleToggle, admin: true},
	"/delete":            {run: (*Handler).handleDelete, admin: true},
}

// HandleUpdate trata uma atualização do Telegram
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" || msg.From == nil {
		return
	}

	name, args := splitCommand(msg.Text)
	if !strings.HasPrefix(name, "/") {
		return
	}

	cmd, ok := commands[name]
	if !ok {
		metrics.BotCommands.WithLabelValues("unknown").Inc()
		if msg.Chat.IsPrivate() {
			h.reply(msg.Chat.ID, "Comando não reconhecido. Use /help para ver os comandos disponíveis.")
		}
		return
	}
	metrics.BotCommands.WithLabelValues(strings.TrimPrefix(name, "/")).Inc()

	if cmd.admin && !h.cfg.IsAdmin(msg.From.ID) {
		h.reply(msg.Chat.ID, "⛔ Você não tem permissão para usar este comando.")
		return
	}

	if msg.Chat.IsPrivate() {
		h.touchUser(ctx, msg.From)
	}
	cmd.run(h, ctx, msg, args)
}

// touchUser registra o usuário ou atualiza sua última atividade
func (h *Handler) touchUser(ctx context.Context, from *tgbotapi.User) {
	_, err := h.catalog.RegisterUser(ctx, models.User{
		TelegramID: from.ID,
		Username:   from.UserName,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
		IsAdmin:    h.cfg.IsAdmin(from.ID),
	})
	if err != nil {
		h.log.Error("Erro ao registrar usuário", zap.Int64("telegram_id", from.ID), zap.Error(err))
	}
}

// reply envia HTML e, se o Telegram recusar, tenta sem formatação
func (h *Handler) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := h.api.Send(msg); err != nil {
		h.log.Warn("Erro ao enviar mensagem com HTML", zap.Int64("chat_id", chatID), zap.Error(err))
		// Tentar sem formatação se houver erro
		msg.ParseMode = ""
		if _, err := h.api.Send(msg); err != nil {
			h.log.Error("Erro ao enviar mensagem sem formatação", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
}

// fail registra o erro e responde: administradores recebem o detalhe,
// usuários só um pedido de desculpas
func (h *Handler) fail(msg *tgbotapi.Message, action string, err error) {
	h.log.Error("Erro ao executar comando",
		zap.String("action", action),
		zap.Int64("chat_id", msg.Chat.ID),
		zap.Error(err))

	if h.cfg.IsAdmin(msg.From.ID) {
		h.reply(msg.Chat.ID, fmt.Sprintf("❌ Erro ao %s: %s", action, escapeHTML(err.Error())))
		return
	}
	h.reply(msg.Chat.ID, genericError)
}

func (h *Handler) handleStart(_ context.Context, msg *tgbotapi.Message, _ []string) {
	name := msg.From.FirstName
	if name == "" {
		name = msg.From.UserName
	}
	text := fmt.Sprintf("👋 Olá, <b>%s</b>!\n\nEu encontro as melhores ofertas da Amazon, eBay, Walmart e outras lojas e aviso quando os preços caem.\n\n", escapeHTML(name))
	h.reply(msg.Chat.ID, text+userHelp)
}

func (h *Handler) handleHelp(_ context.Context, msg *tgbotapi.Message, _ []string) {
	text := userHelp
	if h.cfg.IsAdmin(msg.From.ID) {
		text += adminHelp
	}
	h.reply(msg.Chat.ID, text)
}

func (h *Handler) productLink(telegramID int64) func(models.Product) string {
	return func(p models.Product) string {
		return h.trackedLink(p.ID, telegramID, p.AffiliateURL)
	}
}

func (h *Handler) handleDeals(ctx context.Context, msg *tgbotapi.Message, _ []string) {
	deals, err := h.db.ListDailyDeals(ctx, listLimit)
	if err != nil {
		h.fail(msg, "buscar ofertas", err)
		return
	}
	if len(deals) == 0 {
		h.reply(msg.Chat.ID, "🔥 Nenhuma oferta do dia no momento. Volte mais tarde!")
		return
	}
	h.reply(msg.Chat.ID, formatProductList("🔥 <b>Ofertas do Dia</b>", deals, h.productLink(msg.From.ID)))
}

func (h *Handler) handleCategories(ctx context.Context, msg *tgbotapi.Message, _ []string) {
	categories, err := h.db.ListCategories(ctx)
	if err != nil {
		h.fail(msg, "listar categorias", err)
		return
	}
	h.reply(msg.Chat.ID, formatCategories(categories))
}

func (h *Handler) handleCategory(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		h.reply(msg.Chat.ID, "❌ Uso: /category &lt;nome&gt;\n\nUse /categories para ver a lista.")
		return
	}
	name := strings.ToLower(args[0])
	if name == catalog.DailyDealsCategory {
		h.handleDeals(ctx, msg, nil)
		return
	}

	category, err := h.db.GetCategoryByName(ctx, name)
	if errors.Is(err, database.ErrNotFound) {
		h.reply(msg.Chat.ID, "❌ Categoria não encontrada. Use /categories para ver a lista.")
		return
	}
	if err != nil {
		h.fail(msg, "buscar categoria", err)
		return
	}

	products, err := h.db.ListByCategory(ctx, category.Name, listLimit)
	if err != nil {
		h.fail(msg, "listar produtos", err)
		return
	}
	if len(products) == 0 {
		h.reply(msg.Chat.ID, fmt.Sprintf("%s\n\nNenhum produto nesta categoria ainda.", escapeHTML(category.Label())))
		return
	}
	title := fmt.Sprintf("<b>%s</b>", escapeHTML(category.Label()))
	h.reply(msg.Chat.ID, formatProductList(title, products, h.productLink(msg.From.ID)))
}

func (h *Handler) handleSearch(ctx context.Context, msg *tgbotapi.Message, args []string) {
	term := strings.TrimSpace(strings.Join(args, " "))
	if len([]rune(term)) < 2 {
		h.reply(msg.Chat.ID, "❌ Uso: /search &lt;termo&gt;\n\nExemplo: /search fone bluetooth")
		return
	}

	if err := h.catalog.TrackAction(ctx, msg.From.ID, "search", map[string]any{"query": term}); err != nil {
		h.log.Warn("Erro ao registrar busca", zap.Error(err))
	}

	products, err := h.db.SearchProducts(ctx, term, listLimit)
	if err != nil {
		h.fail(msg, "buscar produtos", err)
		return
	}
	if len(products) == 0 {
		h.reply(msg.Chat.ID, fmt.Sprintf("🔍 Nenhum produto encontrado para \"%s\".", escapeHTML(term)))
		return
	}
	title := fmt.Sprintf("🔍 <b>Resultados para \"%s\"</b>", escapeHTML(term))
	h.reply(msg.Chat.ID, formatProductList(title, products, h.productLink(msg.From.ID)))
}

func (h *Handler) handleLink(ctx context.Context, msg *tgbotapi.Message, args []string) {
	id, err := parseID(args)
	if err != nil {
		h.reply(msg.Chat.ID, "❌ Uso: /link &lt;id&gt;\n\nExemplo: /link 12")
		return
	}

	p, err := h.db.GetProduct(ctx, id)
	if errors.Is(err, database.ErrNotFound) || (err == nil && !p.IsActive) {
		h.reply(msg.Chat.ID, "❌ Produto não encontrado.")
		return
	}
	if err != nil {
		h.fail(msg, "buscar produto", err)
		return
	}

	link := h.trackedLink(p.ID, msg.From.ID, p.AffiliateURL)
	if link == p.AffiliateURL {
		// sem redirecionamento rastreado o clique é registrado aqui
		if err := h.catalog.TrackClick(ctx, msg.From.ID, p.ID, catalog.ClickInfo{}); err != nil {
			h.log.Warn("Erro ao registrar clique", zap.Int64("product_id", p.ID), zap.Error(err))
		}
	}
	h.reply(msg.Chat.ID, "🛒 "+formatProduct(*p, link))
}

func (h *Handler) handleNotifications(ctx context.Context, msg *tgbotapi.Message, args []string) {
	u, err := h.db.GetUserByTelegramID(ctx, msg.From.ID)
	if err != nil {
		h.fail(msg, "buscar usuário", err)
		return
	}

	enabled := !u.NotificationsEnabled
	if len(args) > 0 {
		if enabled, err = parseBool(args[0]); err != nil {
			h.reply(msg.Chat.ID, "❌ Uso: /notifications [on|off]")
			return
		}
	}

	if err := h.db.SetNotifications(ctx, msg.From.ID, enabled); err != nil {
		h.fail(msg, "alterar alertas", err)
		return
	}
	if enabled {
		h.reply(msg.Chat.ID, "🔔 Alertas de queda de preço ligados.")
	} else {
		h.reply(msg.Chat.ID, "🔕 Alertas de queda de preço desligados.")
	}
}

func (h *Handler) handlePrefs(ctx context.Context, msg *tgbotapi.Message, args []string) {
	u, err := h.db.GetUserByTelegramID(ctx, msg.From.ID)
	if err != nil {
		h.fail(msg, "buscar usuário", err)
		return
	}
	if len(args) == 0 {
		h.reply(msg.Chat.ID, formatPreferences(*u))
		return
	}

	prefs, err := parsePreferences(args)
	if err != nil {
		h.reply(msg.Chat.ID, "❌ "+escapeHTML(err.Error()))
		return
	}
	for _, name := range prefs.categories {
		if _, err := h.db.GetCategoryByName(ctx, name); errors.Is(err, database.ErrNotFound) {
			h.reply(msg.Chat.ID, fmt.Sprintf("❌ Categoria desconhecida: %s. Use /categories para ver a lista.", escapeHTML(name)))
			return
		}
	}

	maxPrice, minDiscount, categories := prefs.apply(*u)
	if err := h.db.UpdatePreferences(ctx, msg.From.ID, maxPrice, minDiscount, categories); err != nil {
		h.fail(msg, "salvar preferências", err)
		return
	}
	u.MaxPriceFilter, u.MinDiscountFilter, u.PreferredCategories = maxPrice, minDiscount, models.NormalizeCategories(categories)
	h.reply(msg.Chat.ID, "✅ Preferências salvas.\n\n"+formatPreferences(*u))
}

// canManageGroup indica se o remetente administra o grupo ou o bot
func (h *Handler) canManageGroup(msg *tgbotapi.Message) (bool, error) {
	if h.cfg.IsAdmin(msg.From.ID) {
		return true, nil
	}
	member, err := h.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: msg.Chat.ID, UserID: msg.From.ID},
	})
	if err != nil {
		return false, err
	}
	return member.IsCreator() || member.IsAdministrator(), nil
}

// groupGuard confere se o comando veio de um grupo e de um administrador
func (h *Handler) groupGuard(msg *tgbotapi.Message) bool {
	if !msg.Chat.IsGroup() && !msg.Chat.IsSuperGroup() {
		h.reply(msg.Chat.ID, "❌ Este comando só funciona em grupos.")
		return false
	}
	ok, err := h.canManageGroup(msg)
	if err != nil {
		h.fail(msg, "verificar administrador do grupo", err)
		return false
	}
	if !ok {
		h.reply(msg.Chat.ID, "⛔ Apenas administradores do grupo podem usar este comando.")
		return false
	}
	return true
}

func (h *Handler) handleAuthorizeGroup(ctx context.Context, msg *tgbotapi.Message, _ []string) {
	if !h.groupGuard(msg) {
		return
	}
	err := h.db.AuthorizeGroup(ctx, models.Group{
		ChatID:       msg.Chat.ID,
		Title:        msg.Chat.Title,
		AuthorizedBy: msg.From.ID,
	})
	if err != nil {
		h.fail(msg, "autorizar grupo", err)
		return
	}
	h.log.Info("Grupo autorizado", zap.Int64("chat_id", msg.Chat.ID), zap.Int64("by", msg.From.ID))
	h.reply(msg.Chat.ID, "✅ Grupo autorizado! As ofertas do dia serão enviadas aqui.\n\nUse /group_deals off para pausar os envios.")
}

func (h *Handler) handleDeauthorizeGroup(ctx context.Context, msg *tgbotapi.Message, _ []string) {
	if !h.groupGuard(msg) {
		return
	}
	err := h.db.DeauthorizeGroup(ctx, msg.Chat.ID)
	if errors.Is(err, database.ErrNotFound) {
		h.reply(msg.Chat.ID, "ℹ️ Este grupo não estava autorizado.")
		return
	}
	if err != nil {
		h.fail(msg, "remover autorização do grupo", err)
		return
	}
	h.log.Info("Autorização do grupo removida", zap.Int64("chat_id", msg.Chat.ID), zap.Int64("by", msg.From.ID))
	h.reply(msg.Chat.ID, "✅ Autorização removida. O grupo não receberá mais ofertas.")
}

func (h *Handler) handleGroupDeals(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if !h.groupGuard(msg) {
		return
	}
	if len(args) == 0 {
		h.reply(msg.Chat.ID, "❌ Uso: /group_deals on|off")
		return
	}
	enabled, err := parseBool(args[0])
	if err != nil {
		h.reply(msg.Chat.ID, "❌ Uso: /group_deals on|off")
		return
	}

	err = h.db.SetGroupAutoDeals(ctx, msg.Chat.ID, enabled)
	if errors.Is(err, database.ErrNotFound) {
		h.reply(msg.Chat.ID, "ℹ️ Autorize o grupo primeiro com /authorize_group.")
		return
	}
	if err != nil {
		h.fail(msg, "alterar envios do grupo", err)
		return
	}
	if enabled {
		h.reply(msg.Chat.ID, "🔔 Envio de ofertas do dia retomado.")
	} else {
		h.reply(msg.Chat.ID, "🔕 Envio de ofertas do dia pausado.")
	}
}

func (h *Handler) handleAdmin(ctx context.Context, msg *tgbotapi.Message, _ []string) {
	stats, err := h.monitor.Stats(ctx)
	if err != nil {
		h.fail(msg, "buscar estatísticas", err)
		return
	}
	global, err := h.db.GlobalStats(ctx, time.Now(), 5)
	if err != nil {
		h.fail(msg, "buscar estatísticas de uso", err)
		return
	}
	h.reply(msg.Chat.ID, formatAdminStats(stats, global))
}

func (h *Handler) handleAddProduct(ctx context.Context, msg *tgbotapi.Message, _ []string) {
	in, err := parseAddProduct(msg.Text)
	if err != nil {
		h.reply(msg.Chat.ID, escapeHTML(addProductUsage)+"\n\n"+escapeHTML(err.Error()))
		return
	}

	p, err := h.catalog.AddProduct(ctx, in)
	switch {
	case errors.Is(err, catalog.ErrCategoryNotFound):
		h.reply(msg.Chat.ID, fmt.Sprintf("❌ Categoria não encontrada: %s. Use /categories para ver a lista.", escapeHTML(in.Category)))
		return
	case errors.Is(err, catalog.ErrInvalidProduct):
		h.reply(msg.Chat.ID, "❌ "+escapeHTML(err.Error()))
		return
	case err != nil:
		h.fail(msg, "adicionar produto", err)
		return
	}

	h.reply(msg.Chat.ID, "✅ Produto adicionado com sucesso!\n\n"+formatProduct(*p, p.AffiliateURL))
}

// progress envia uma mensagem de espera e devolve a função que a substitui
// pelo resultado
func (h *Handler) progress(chatID int64, text string) func(result string) {
	sent, err := h.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return func(result string) { h.reply(chatID, result) }
	}
	return func(result string) {
		edit := tgbotapi.NewEditMessageText(chatID, sent.MessageID, result)
		edit.ParseMode = tgbotapi.ModeHTML
		if _, err := h.api.Send(edit); err != nil {
			h.log.Warn("Erro ao editar mensagem (enviando nova)", zap.Error(err))
			h.reply(chatID, result)
		}
	}
}

func (h *Handler) handleScrapeProducts(ctx context.Context, msg *tgbotapi.Message, _ []string) {
	done := h.progress(msg.Chat.ID, "⏳ Coletando ofertas da Amazon e do eBay...")

	added, err := h.monitor.ScrapeProducts(ctx)
	if err != nil {
		done(fmt.Sprintf("❌ Erro na coleta: %s", escapeHTML(err.Error())))
		return
	}
	done(fmt.Sprintf("✅ Coleta concluída: %d novos produtos.", added))
}

func (h *Handler) handleRefresh(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		h.reply(msg.Chat.ID, "❌ Uso: /refresh &lt;rodada&gt;\n\nRodadas: "+strings.Join(monitor.Passes, ", "))
		return
	}
	pass := strings.ToLower(args[0])
	done := h.progress(msg.Chat.ID, fmt.Sprintf("⏳ Executando rodada %s...", pass))

	var result string
	var err error
	switch pass {
	case monitor.PassPrices:
		var r monitor.PriceReport
		r, err = h.monitor.UpdatePrices(ctx)
		result = fmt.Sprintf("%d preços verificados, %d falhas, %d quedas, %d alertas enviados", r.Checked, r.Failed, r.Drops, r.Notified)
	case monitor.PassDeals:
		var deals []models.Product
		deals, err = h.monitor.RefreshDailyDeals(ctx)
		result = fmt.Sprintf("%d ofertas do dia selecionadas", len(deals))
	case monitor.PassCleanup:
		var n int64
		n, err = h.monitor.CleanupClicks(ctx)
		result = fmt.Sprintf("%d cliques antigos removidos", n)
	case monitor.PassDigest:
		var n int
		n, err = h.monitor.SendDailyDigest(ctx)
		result = fmt.Sprintf("resumo enviado para %d destinatários", n)
	case monitor.PassScrape:
		var n int
		n, err = h.monitor.ScrapeProducts(ctx)
		result = fmt.Sprintf("%d novos produtos", n)
	default:
		done(fmt.Sprintf("❌ Rodada desconhecida: %s\n\nRodadas: %s", escapeHTML(pass), strings.Join(monitor.Passes, ", ")))
		return
	}

	if err != nil {
		done(fmt.Sprintf("❌ Rodada %s falhou: %s", pass, escapeHTML(err.Error())))
		return
	}
	done(fmt.Sprintf("✅ Rodada %s concluída: %s.", pass, result))
}

func (h *Handler) handleRelink(ctx context.Context, msg *tgbotapi.Message, args []string) {
	var id int64
	if len(args) > 0 {
		var err error
		if id, err = parseID(args); err != nil {
			h.reply(msg.Chat.ID, "❌ Uso: /relink [id]")
			return
		}
	}

	changed, err := h.catalog.RegenerateAffiliateLinks(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		h.reply(msg.Chat.ID, "❌ Produto não encontrado.")
		return
	}
	if err != nil {
		h.fail(msg, "regenerar links", err)
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("✅ Links regenerados: %d alterados.", changed))
}

func (h *Handler) handleValidate(ctx context.Context, msg *tgbotapi.Message, args []string) {
	id, err := parseID(args)
	if err != nil {
		h.reply(msg.Chat.ID, "❌ Uso: /validate &lt;id&gt;")
		return
	}
	p, err := h.db.GetProduct(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		h.reply(msg.Chat.ID, "❌ Produto não encontrado.")
		return
	}
	if err != nil {
		h.fail(msg, "buscar produto", err)
		return
	}

	if h.validator.Check(ctx, p.AffiliateURL) {
		h.reply(msg.Chat.ID, fmt.Sprintf("✅ Link do produto %d respondeu normalmente.", p.ID))
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("⚠️ Link do produto %d não respondeu com sucesso:\n%s", p.ID, escapeHTML(p.AffiliateURL)))
}

func (h *Handler) handleCommission(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) < 2 {
		h.reply(msg.Chat.ID, "❌ Uso: /commission &lt;loja&gt; &lt;taxa&gt;\n\nExemplo: /commission Best Buy 1.5")
		return
	}
	store := strings.Join(args[:len(args)-1], " ")
	rate, err := parseAmount(args[len(args)-1])
	if err != nil || rate > 100 {
		h.reply(msg.Chat.ID, "❌ Taxa inválida. Use um valor entre 0 e 100.")
		return
	}

	err = h.db.UpdateStoreCommission(ctx, store, rate)
	if errors.Is(err, database.ErrNotFound) {
		h.reply(msg.Chat.ID, "❌ Loja não encontrada.")
		return
	}
	if err != nil {
		h.fail(msg, "alterar comissão", err)
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("✅ Comissão de %s alterada para %.2f%%.", escapeHTML(store), rate))
}

func (h *Handler) handleToggle(ctx context.Context, msg *tgbotapi.Message, args []string) {
	id, err := parseID(args)
	if err != nil {
		h.reply(msg.Chat.ID, "❌ Uso: /toggle &lt;id&gt;")
		return
	}
	p, err := h.db.GetProduct(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		h.reply(msg.Chat.ID, "❌ Produto não encontrado.")
		return
	}
	if err != nil {
		h.fail(msg, "buscar produto", err)
		return
	}

	if err := h.db.SetProductActive(ctx, id, !p.IsActive); err != nil {
		h.fail(msg, "alterar produto", err)
		return
	}
	state := "ativado"
	if p.IsActive {
		state = "desativado"
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("✅ Produto %d %s: %s", id, state, escapeHTML(p.Title)))
}

func (h *Handler) handleDelete(ctx context.Context, msg *tgbotapi.Message, args []string) {
	id, err := parseID(args)
	if err != nil {
		h.reply(msg.Chat.ID, "❌ Uso: /delete &lt;id&gt;")
		return
	}

	err = h.db.DeleteProduct(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		h.reply(msg.Chat.ID, "❌ Produto não encontrado.")
		return
	}
	if err != nil {
		h.fail(msg, "remover produto", err)
		return
	}
	h.log.Info("Produto removido", zap.Int64("product_id", id), zap.Int64("by", msg.From.ID))
	h.reply(msg.Chat.ID, "✅ Produto removido: "+strconv.FormatInt(id, 10))
}
