// Package pricing fornece o preço atual de um produto para o monitor.
package pricing

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"bot-afiliados/internal/models"
	"bot-afiliados/internal/scraper"
)

// Source devolve o preço atual de um produto
type Source interface {
	CurrentPrice(ctx context.Context, p models.Product) (float64, error)
}

// Simulated gera variações aleatórias de preço. Não consulta loja nenhuma:
// serve para demonstração e testes enquanto não há integração real.
//
// Em cada chamada: 70% sem mudança, 20% variação de ±5%, 10% variação de ±15%.
// O resultado é arredondado em centavos e nunca fica abaixo de minPrice.
type Simulated struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	minPrice float64
}

// NewSimulated cria uma fonte simulada com a semente informada
func NewSimulated(seed int64, minPrice float64) *Simulated {
	return &Simulated{rnd: rand.New(rand.NewSource(seed)), minPrice: minPrice}
}

func (s *Simulated) CurrentPrice(_ context.Context, p models.Product) (float64, error) {
	return s.Next(p.Price), nil
}

// Next sorteia o próximo preço a partir do atual
func (s *Simulated) Next(current float64) float64 {
	if current <= 0 {
		return current
	}

	s.mu.Lock()
	roll := s.rnd.Intn(100)
	var factor float64
	switch {
	case roll < 70:
		s.mu.Unlock()
		return current
	case roll < 90:
		factor = 0.95 + s.rnd.Float64()*0.10
	default:
		factor = 0.85 + s.rnd.Float64()*0.30
	}
	s.mu.Unlock()

	next := models.RoundPrice(current * factor)
	if next < s.minPrice {
		return s.minPrice
	}
	return next
}

// Scraped busca o preço na página do produto usando os scrapers registrados
type Scraped struct {
	registry *scraper.Registry
	delay    time.Duration
	log      *zap.Logger

	mu   sync.Mutex
	last time.Time
}

// NewScraped cria uma fonte que consulta as lojas, espaçando as requisições por delay
func NewScraped(registry *scraper.Registry, delay time.Duration, log *zap.Logger) *Scraped {
	return &Scraped{registry: registry, delay: delay, log: log}
}

func (s *Scraped) CurrentPrice(ctx context.Context, p models.Product) (float64, error) {
	sc := s.registry.FindScraper(p.ProductURL)
	if sc == nil {
		return 0, fmt.Errorf("nenhum scraper encontrado para URL: %s", p.ProductURL)
	}

	if err := s.wait(ctx); err != nil {
		return 0, err
	}

	info, err := sc.GetPrice(ctx, p.ProductURL)
	if err != nil {
		return 0, fmt.Errorf("erro ao buscar preço: %w", err)
	}
	s.log.Debug("Preço consultado", zap.Int64("product_id", p.ID), zap.Float64("price", info.Price))
	return info.Price, nil
}

// wait garante o intervalo mínimo entre requisições às lojas
func (s *Scraped) wait(ctx context.Context) error {
	s.mu.Lock()
	next := s.last.Add(s.delay)
	now := time.Now()
	if next.Before(now) {
		next = now
	}
	s.last = next
	s.mu.Unlock()

	d := time.Until(next)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
