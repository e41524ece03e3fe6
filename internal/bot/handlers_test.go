package bot

import (
	"context"
	"strconv"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap/zaptest"

	"bot-afiliados/config"
	"bot-afiliados/internal/affiliate"
	"bot-afiliados/internal/catalog"
	"bot-afiliados/internal/database"
	"bot-afiliados/internal/database/dbtest"
	"bot-afiliados/internal/lock"
	"bot-afiliados/internal/monitor"
	"bot-afiliados/internal/pricing"
)

const adminID = 1

type fakeAPI struct {
	texts       []string
	groupStatus string
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		f.texts = append(f.texts, m.Text)
	case tgbotapi.EditMessageTextConfig:
		f.texts = append(f.texts, m.Text)
	}
	return tgbotapi.Message{MessageID: len(f.texts)}, nil
}

func (f *fakeAPI) GetChatMember(tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	return tgbotapi.ChatMember{Status: f.groupStatus}, nil
}

func (f *fakeAPI) last() string {
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

type fixture struct {
	h   *Handler
	api *fakeAPI
	db  *database.DB
	cat *catalog.Service
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)
	db := dbtest.New(t)
	dir, err := affiliate.LoadDirectory("")
	if err != nil {
		t.Fatal(err)
	}
	cat := catalog.NewService(db, affiliate.NewGenerator(affiliate.Credentials{AmazonTag: "bot-20"}, log), dir, log)
	if err := cat.SeedDefaults(context.Background()); err != nil {
		t.Fatal(err)
	}
	mon := monitor.New(monitor.Deps{
		Store:  db,
		Prices: pricing.NewSimulated(1, 0.99),
		Locker: lock.NewLocal(),
	}, monitor.DefaultOptions(), log)

	if cfg == nil {
		cfg = &config.Config{}
	}
	cfg.AdminIDs = []int64{adminID}
	api := &fakeAPI{groupStatus: "member"}
	h := New(Deps{API: api, DB: db, Catalog: cat, Monitor: mon, Validator: affiliate.NewValidator(log), Config: cfg}, log)
	return &fixture{h: h, api: api, db: db, cat: cat}
}

func (f *fixture) send(from int64, chat *tgbotapi.Chat, text string) string {
	f.h.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		From: &tgbotapi.User{ID: from, FirstName: "Ana", UserName: "ana"},
		Chat: chat,
	}})
	return f.api.last()
}

func private(id int64) *tgbotapi.Chat { return &tgbotapi.Chat{ID: id, Type: "private"} }

func (f *fixture) addProduct(t *testing.T) int64 {
	t.Helper()
	reply := f.send(adminID, private(adminID), `/addproduct
titulo: Echo Dot
preco: 49.99
original: 59.99
url: https://www.amazon.com/dp/B09B8V1LZ3
categoria: electronics
loja: Amazon
oferta: sim`)
	if !strings.Contains(reply, "Produto adicionado") {
		t.Fatalf("/addproduct = %q", reply)
	}
	products, err := f.db.SearchProducts(context.Background(), "Echo", 1)
	if err != nil || len(products) != 1 {
		t.Fatalf("SearchProducts() = %v, %v", products, err)
	}
	return products[0].ID
}

func TestStartRegistersUser(t *testing.T) {
	f := newFixture(t, nil)
	reply := f.send(42, private(42), "/start")
	if !strings.Contains(reply, "Olá, <b>Ana</b>") || strings.Contains(reply, "Administração") {
		t.Errorf("/start = %q", reply)
	}
	u, err := f.db.GetUserByTelegramID(context.Background(), 42)
	if err != nil || u.Username != "ana" || !u.NotificationsEnabled {
		t.Errorf("usuário = %+v, %v", u, err)
	}

	if reply := f.send(adminID, private(adminID), "/help"); !strings.Contains(reply, "Administração") {
		t.Errorf("/help do admin sem seção de administração")
	}
}

func TestAdminCommandsRequireAdmin(t *testing.T) {
	f := newFixture(t, nil)
	for _, cmd := range []string{"/admin", "/addproduct", "/refresh prices", "/delete 1", "/commission Amazon 3"} {
		if reply := f.send(42, private(42), cmd); !strings.Contains(reply, "permissão") {
			t.Errorf("%s por usuário comum = %q", cmd, reply)
		}
	}
}

func TestDealsLinkAndSearch(t *testing.T) {
	f := newFixture(t, nil)
	id := f.addProduct(t)
	ctx := context.Background()

	if reply := f.send(42, private(42), "/deals"); !strings.Contains(reply, "Echo Dot") || !strings.Contains(reply, "tag=bot-20") {
		t.Errorf("/deals = %q", reply)
	}
	if reply := f.send(42, private(42), "/category electronics"); !strings.Contains(reply, "Echo Dot") {
		t.Errorf("/category = %q", reply)
	}
	if reply := f.send(42, private(42), "/category jardim"); !strings.Contains(reply, "não encontrada") {
		t.Errorf("/category jardim = %q", reply)
	}
	if reply := f.send(42, private(42), "/search echo"); !strings.Contains(reply, "Echo Dot") {
		t.Errorf("/search = %q", reply)
	}

	reply := f.send(42, private(42), "/link "+itoa(id))
	if !strings.Contains(reply, "/dp/B09B8V1LZ3?tag=bot-20") {
		t.Errorf("/link = %q", reply)
	}
	// busca + clique no link
	if n, _ := f.db.CountClicks(ctx); n != 2 {
		t.Errorf("CountClicks() = %d, want 2", n)
	}

	if reply := f.send(42, private(42), "/link 999"); !strings.Contains(reply, "não encontrado") {
		t.Errorf("/link 999 = %q", reply)
	}
}

func TestLinkUsesTrackedRedirect(t *testing.T) {
	f := newFixture(t, &config.Config{PublicBaseURL: "https://bot.example.com/"})
	id := f.addProduct(t)

	reply := f.send(42, private(42), "/link "+itoa(id))
	if want := "https://bot.example.com/go/" + itoa(id) + "?u=42"; !strings.Contains(reply, want) {
		t.Errorf("/link = %q, want %q", reply, want)
	}
	// o clique é registrado pelo redirecionamento
	if n, _ := f.db.CountClicks(context.Background()); n != 0 {
		t.Errorf("CountClicks() = %d, want 0", n)
	}
}

func TestNotificationsAndPrefs(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.send(42, private(42), "/start")

	if reply := f.send(42, private(42), "/notifications"); !strings.Contains(reply, "desligados") {
		t.Errorf("/notifications = %q", reply)
	}
	if reply := f.send(42, private(42), "/notifications on"); !strings.Contains(reply, "ligados") {
		t.Errorf("/notifications on = %q", reply)
	}

	reply := f.send(42, private(42), "/prefs max=200 categorias=beauty,books")
	if !strings.Contains(reply, "Preferências salvas") || !strings.Contains(reply, "$200.00") {
		t.Errorf("/prefs = %q", reply)
	}
	u, _ := f.db.GetUserByTelegramID(ctx, 42)
	if u.MaxPriceFilter == nil || *u.MaxPriceFilter != 200 || len(u.PreferredCategories) != 2 {
		t.Errorf("usuário = %+v", u)
	}

	if reply := f.send(42, private(42), "/prefs categorias=jardim"); !strings.Contains(reply, "Categoria desconhecida") {
		t.Errorf("/prefs categoria inválida = %q", reply)
	}
}

func TestAdminProductManagement(t *testing.T) {
	f := newFixture(t, nil)
	id := f.addProduct(t)
	ctx := context.Background()

	if reply := f.send(adminID, private(adminID), "/toggle "+itoa(id)); !strings.Contains(reply, "desativado") {
		t.Errorf("/toggle = %q", reply)
	}
	p, _ := f.db.GetProduct(ctx, id)
	if p.IsActive {
		t.Error("produto continua ativo após /toggle")
	}

	if reply := f.send(adminID, private(adminID), "/commission Best Buy 1.5"); !strings.Contains(reply, "1.50%") {
		t.Errorf("/commission = %q", reply)
	}
	st, _ := f.db.GetStoreByName(ctx, "Best Buy")
	if st.CommissionRate != 1.5 {
		t.Errorf("CommissionRate = %v", st.CommissionRate)
	}
	if reply := f.send(adminID, private(adminID), "/commission Loja X 2"); !strings.Contains(reply, "Loja não encontrada") {
		t.Errorf("/commission loja inexistente = %q", reply)
	}

	if reply := f.send(adminID, private(adminID), "/relink"); !strings.Contains(reply, "0 alterados") {
		t.Errorf("/relink = %q", reply)
	}
	if reply := f.send(adminID, private(adminID), "/refresh cleanup"); !strings.Contains(reply, "cleanup concluída") {
		t.Errorf("/refresh cleanup = %q", reply)
	}
	if reply := f.send(adminID, private(adminID), "/refresh tudo"); !strings.Contains(reply, "desconhecida") {
		t.Errorf("/refresh tudo = %q", reply)
	}
	if reply := f.send(adminID, private(adminID), "/admin"); !strings.Contains(reply, "Produtos: 1 (0 ativos)") {
		t.Errorf("/admin = %q", reply)
	}

	if reply := f.send(adminID, private(adminID), "/delete "+itoa(id)); !strings.Contains(reply, "removido") {
		t.Errorf("/delete = %q", reply)
	}
	if reply := f.send(adminID, private(adminID), "/delete "+itoa(id)); !strings.Contains(reply, "não encontrado") {
		t.Errorf("/delete repetido = %q", reply)
	}
}

func TestGroupAuthorization(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	group := &tgbotapi.Chat{ID: -100, Type: "supergroup", Title: "Ofertas"}

	if reply := f.send(42, group, "/authorize_group"); !strings.Contains(reply, "Apenas administradores") {
		t.Errorf("/authorize_group por membro = %q", reply)
	}

	f.api.groupStatus = "administrator"
	if reply := f.send(42, group, "/authorize_group"); !strings.Contains(reply, "Grupo autorizado") {
		t.Errorf("/authorize_group = %q", reply)
	}
	if ok, _ := f.db.IsGroupAuthorized(ctx, -100); !ok {
		t.Error("grupo não autorizado no banco")
	}
	groups, _ := f.db.ListDealGroups(ctx)
	if len(groups) != 1 || groups[0].Title != "Ofertas" {
		t.Errorf("ListDealGroups() = %+v", groups)
	}

	f.send(42, group, "/group_deals off")
	if groups, _ := f.db.ListDealGroups(ctx); len(groups) != 0 {
		t.Errorf("grupo pausado ainda recebe ofertas: %+v", groups)
	}

	if reply := f.send(42, group, "/deauthorize_group"); !strings.Contains(reply, "Autorização removida") {
		t.Errorf("/deauthorize_group = %q", reply)
	}
	if reply := f.send(42, group, "/deauthorize_group"); !strings.Contains(reply, "não estava autorizado") {
		t.Errorf("/deauthorize_group repetido = %q", reply)
	}

	if reply := f.send(42, private(42), "/authorize_group"); !strings.Contains(reply, "só funciona em grupos") {
		t.Errorf("/authorize_group no privado = %q", reply)
	}
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t, nil)
	if reply := f.send(42, private(42), "/xyz"); !strings.Contains(reply, "não reconhecido") {
		t.Errorf("/xyz = %q", reply)
	}
	before := len(f.api.texts)
	f.send(42, &tgbotapi.Chat{ID: -5, Type: "group"}, "/xyz")
	f.send(42, private(42), "oi")
	if len(f.api.texts) != before {
		t.Error("bot respondeu a comando desconhecido em grupo ou a texto comum")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
