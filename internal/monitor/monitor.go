package monitor

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bot-afiliados/config"
	"bot-afiliados/internal/database"
	"bot-afiliados/internal/lock"
	"bot-afiliados/internal/metrics"
	"bot-afiliados/internal/models"
	"bot-afiliados/internal/pricing"
	"bot-afiliados/internal/scraper"
)

// Nomes das rodadas aceitas por RunPass
const (
	PassPrices  = "prices"
	PassDeals   = "deals"
	PassCleanup = "cleanup"
	PassDigest  = "digest"
	PassScrape  = "scrape"
)

// Passes lista as rodadas na ordem em que aparecem na ajuda
var Passes = []string{PassPrices, PassDeals, PassCleanup, PassDigest, PassScrape}

// ErrScrapingDisabled é retornado por ScrapeProducts sem scraper configurado
var ErrScrapingDisabled = errors.New("coleta de produtos não configurada")

// Store é a parte do banco usada pelo monitor
type Store interface {
	ListStaleProducts(ctx context.Context, cutoff time.Time, limit int) ([]models.Product, error)
	ApplyPriceUpdates(ctx context.Context, updates []models.PriceUpdate) error
	ReselectDailyDeals(ctx context.Context, c database.DealCriteria, now time.Time, pick func([]models.Product) []models.Product) ([]models.Product, error)
	ListDailyDeals(ctx context.Context, limit int) ([]models.Product, error)
	DeleteClicksBefore(ctx context.Context, cutoff time.Time) (int64, error)
	MonitoringStats(ctx context.Context) (*models.MonitoringStats, error)
}

// Notifier recebe os eventos produzidos pelas rodadas
type Notifier interface {
	NotifyPriceDrops(ctx context.Context, drops []models.PriceDrop) int
	NotifyDailyDeals(ctx context.Context, deals []models.Product) int
}

// DealSource coleta produtos das lojas
type DealSource interface {
	ScrapeAll(ctx context.Context) []scraper.ScrapedProduct
}

// Importer grava no catálogo os produtos coletados
type Importer interface {
	ImportScraped(ctx context.Context, products []scraper.ScrapedProduct) (int, error)
}

// Options são os parâmetros das rodadas
type Options struct {
	StaleAfter     time.Duration
	BatchSize      int
	DropThreshold  float64 // queda mínima em % para gerar alerta
	Deals          database.DealCriteria
	DealsMin       int
	DealsMax       int
	DigestSize     int
	ClickRetention time.Duration
	LockTTL        time.Duration
}

// DefaultOptions devolve os valores padrão de produção
func DefaultOptions() Options {
	return Options{
		StaleAfter:     2 * time.Hour,
		BatchSize:      50,
		DropThreshold:  10,
		Deals:          database.DealCriteria{MinDiscount: 15, MinRating: 4.0, Candidates: 20},
		DealsMin:       8,
		DealsMax:       12,
		DigestSize:     5,
		ClickRetention: 90 * 24 * time.Hour,
		LockTTL:        30 * time.Minute,
	}
}

// OptionsFromConfig monta as opções a partir da configuração carregada
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	r := cfg.Refresh
	opts.StaleAfter = r.StaleAfter
	opts.BatchSize = r.BatchSize
	opts.DropThreshold = r.DropThreshold
	opts.Deals = database.DealCriteria{MinDiscount: r.DealMinDiscount, MinRating: r.DealMinRating, Candidates: r.DealCandidates}
	opts.DealsMin = r.DealsMin
	opts.DealsMax = r.DealsMax
	opts.ClickRetention = time.Duration(cfg.ClickRetentionDays) * 24 * time.Hour
	return opts
}

// Deps são as dependências do monitor. Scraper e Importer são opcionais.
type Deps struct {
	Store    Store
	Prices   pricing.Source
	Notifier Notifier
	Locker   lock.Locker
	Scraper  DealSource
	Importer Importer
}

// Monitor executa as rodadas periódicas de preços, ofertas e limpeza
type Monitor struct {
	deps Deps
	opts Options
	log  *zap.Logger
	now  func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// New cria uma nova instância do monitor
func New(deps Deps, opts Options, log *zap.Logger) *Monitor {
	if deps.Locker == nil {
		deps.Locker = lock.NewLocal()
	}
	if opts.DealsMax < opts.DealsMin {
		opts.DealsMax = opts.DealsMin
	}
	return &Monitor{
		deps: deps,
		opts: opts,
		log:  log,
		now:  time.Now,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// PriceReport resume uma rodada de preços
type PriceReport struct {
	Checked  int
	Failed   int
	Drops    int
	Notified int
}

// RunPass executa a rodada pelo nome
func (m *Monitor) RunPass(ctx context.Context, name string) error {
	var err error
	switch name {
	case PassPrices:
		_, err = m.UpdatePrices(ctx)
	case PassDeals:
		_, err = m.RefreshDailyDeals(ctx)
	case PassCleanup:
		_, err = m.CleanupClicks(ctx)
	case PassDigest:
		_, err = m.SendDailyDigest(ctx)
	case PassScrape:
		_, err = m.ScrapeProducts(ctx)
	default:
		err = fmt.Errorf("rodada desconhecida: %q", name)
	}
	return err
}

// run adquire a trava da rodada, mede a duração e registra o resultado
func (m *Monitor) run(ctx context.Context, pass string, fn func(ctx context.Context, log *zap.Logger) error) error {
	log := m.log.With(zap.String("pass", pass), zap.String("run_id", uuid.NewString()))

	release, err := m.deps.Locker.Acquire(ctx, "monitor:"+pass, m.opts.LockTTL)
	if errors.Is(err, lock.ErrLocked) {
		log.Info("Rodada já em execução, ignorando")
		return err
	}
	if err != nil {
		metrics.PassErrors.WithLabelValues(pass).Inc()
		log.Error("Erro ao adquirir trava", zap.Error(err))
		return fmt.Errorf("trava da rodada %s: %w", pass, err)
	}
	defer release()

	timer := prometheus.NewTimer(metrics.PassDuration.WithLabelValues(pass))
	defer timer.ObserveDuration()

	start := time.Now()
	if err := fn(ctx, log); err != nil {
		metrics.PassErrors.WithLabelValues(pass).Inc()
		log.Error("Rodada terminou com erro", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return err
	}
	log.Info("Rodada concluída", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// UpdatePrices verifica o preço dos produtos desatualizados, grava tudo numa
// transação e só então dispara os alertas de queda
func (m *Monitor) UpdatePrices(ctx context.Context) (PriceReport, error) {
	var report PriceReport
	err := m.run(ctx, PassPrices, func(ctx context.Context, log *zap.Logger) error {
		now := m.now()
		products, err := m.deps.Store.ListStaleProducts(ctx, now.Add(-m.opts.StaleAfter), m.opts.BatchSize)
		if err != nil {
			return fmt.Errorf("buscando produtos desatualizados: %w", err)
		}
		log.Info("Verificando preços", zap.Int("products", len(products)))

		updates := make([]models.PriceUpdate, 0, len(products))
		var drops []models.PriceDrop
		for _, p := range products {
			if err := ctx.Err(); err != nil {
				return err
			}

			current, err := m.deps.Prices.CurrentPrice(ctx, p)
			if err != nil {
				report.Failed++
				log.Warn("Erro ao buscar preço", zap.Int64("product_id", p.ID), zap.Error(err))
				continue
			}
			current = models.RoundPrice(current)

			updates = append(updates, models.PriceUpdate{
				ProductID:          p.ID,
				Price:              current,
				DiscountPercentage: models.ComputeDiscount(current, p.OriginalPrice),
				UpdatedAt:          now,
			})

			if isDrop(p.Price, current, m.opts.DropThreshold) {
				old := p.Price
				p.SetPrice(current)
				drops = append(drops, models.PriceDrop{
					Product:  p,
					OldPrice: old,
					NewPrice: current,
					Discount: models.DropPercentage(old, current),
				})
				log.Info("Queda de preço detectada",
					zap.Int64("product_id", p.ID),
					zap.Float64("old_price", old),
					zap.Float64("new_price", current))
			}
		}

		if err := m.deps.Store.ApplyPriceUpdates(ctx, updates); err != nil {
			return fmt.Errorf("gravando preços: %w", err)
		}
		report.Checked = len(updates)
		report.Drops = len(drops)
		metrics.PricesUpdated.Add(float64(len(updates)))
		metrics.PriceDrops.Add(float64(len(drops)))

		if len(drops) > 0 && m.deps.Notifier != nil {
			report.Notified = m.deps.Notifier.NotifyPriceDrops(ctx, drops)
		}
		log.Info("Preços atualizados",
			zap.Int("checked", report.Checked),
			zap.Int("failed", report.Failed),
			zap.Int("drops", report.Drops),
			zap.Int("notified", report.Notified))
		return nil
	})
	return report, err
}

var hundred = decimal.NewFromInt(100)

// isDrop indica queda de pelo menos threshold% de oldPrice para newPrice
func isDrop(oldPrice, newPrice, threshold float64) bool {
	if oldPrice <= 0 || newPrice >= oldPrice {
		return false
	}
	limit := decimal.NewFromFloat(oldPrice).Mul(hundred.Sub(decimal.NewFromFloat(threshold))).Div(hundred)
	return decimal.NewFromFloat(newPrice).LessThanOrEqual(limit)
}

// RefreshDailyDeals refaz a seleção de ofertas do dia: sorteia entre
// DealsMin e DealsMax produtos dos melhores candidatos
func (m *Monitor) RefreshDailyDeals(ctx context.Context) ([]models.Product, error) {
	var deals []models.Product
	err := m.run(ctx, PassDeals, func(ctx context.Context, log *zap.Logger) error {
		selected, err := m.deps.Store.ReselectDailyDeals(ctx, m.opts.Deals, m.now(), m.pickDeals)
		if err != nil {
			return fmt.Errorf("selecionando ofertas do dia: %w", err)
		}
		deals = selected
		metrics.DealsSelected.Set(float64(len(selected)))
		log.Info("Ofertas do dia atualizadas", zap.Int("deals", len(selected)))
		return nil
	})
	return deals, err
}

// pickDeals sorteia o tamanho e a amostra mantendo a ordem do ranking
func (m *Monitor) pickDeals(candidates []models.Product) []models.Product {
	if len(candidates) == 0 {
		return nil
	}

	m.mu.Lock()
	n := m.opts.DealsMin + m.rnd.Intn(m.opts.DealsMax-m.opts.DealsMin+1)
	idx := m.rnd.Perm(len(candidates))
	m.mu.Unlock()

	if n > len(candidates) {
		n = len(candidates)
	}
	idx = idx[:n]
	sort.Ints(idx)

	out := make([]models.Product, 0, n)
	for _, i := range idx {
		out = append(out, candidates[i])
	}
	return out
}

// CleanupClicks apaga os cliques mais antigos que a retenção
func (m *Monitor) CleanupClicks(ctx context.Context) (int64, error) {
	var deleted int64
	err := m.run(ctx, PassCleanup, func(ctx context.Context, log *zap.Logger) error {
		cutoff := m.now().Add(-m.opts.ClickRetention)
		n, err := m.deps.Store.DeleteClicksBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("apagando cliques: %w", err)
		}
		deleted = n
		metrics.ClicksDeleted.Add(float64(n))
		log.Info("Cliques antigos removidos", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
		return nil
	})
	return deleted, err
}

// SendDailyDigest envia as principais ofertas do dia para usuários e grupos
func (m *Monitor) SendDailyDigest(ctx context.Context) (int, error) {
	var sent int
	err := m.run(ctx, PassDigest, func(ctx context.Context, log *zap.Logger) error {
		deals, err := m.deps.Store.ListDailyDeals(ctx, m.opts.DigestSize)
		if err != nil {
			return fmt.Errorf("buscando ofertas do dia: %w", err)
		}
		if len(deals) == 0 {
			log.Info("Nenhuma oferta do dia para enviar")
			return nil
		}
		if m.deps.Notifier != nil {
			sent = m.deps.Notifier.NotifyDailyDeals(ctx, deals)
		}
		return nil
	})
	return sent, err
}

// ScrapeProducts coleta produtos das lojas e importa os novos no catálogo
func (m *Monitor) ScrapeProducts(ctx context.Context) (int, error) {
	if m.deps.Scraper == nil || m.deps.Importer == nil {
		return 0, ErrScrapingDisabled
	}

	var added int
	err := m.run(ctx, PassScrape, func(ctx context.Context, log *zap.Logger) error {
		scraped := m.deps.Scraper.ScrapeAll(ctx)
		log.Info("Produtos coletados", zap.Int("scraped", len(scraped)))
		if len(scraped) == 0 {
			return nil
		}

		n, err := m.deps.Importer.ImportScraped(ctx, scraped)
		added = n
		if err != nil {
			return fmt.Errorf("importando produtos: %w", err)
		}
		log.Info("Produtos importados", zap.Int("added", n))
		return nil
	})
	return added, err
}

// Stats retorna os totais do catálogo
func (m *Monitor) Stats(ctx context.Context) (*models.MonitoringStats, error) {
	return m.deps.Store.MonitoringStats(ctx)
}
