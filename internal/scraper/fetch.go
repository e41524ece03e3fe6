package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher baixa páginas com cabeçalhos de navegador e espaça as requisições
type Fetcher struct {
	client    *http.Client
	userAgent string
	delay     time.Duration
}

// NewFetcher cria um Fetcher com timeout de 30 segundos
func NewFetcher(userAgent string, delay time.Duration) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: userAgent,
		delay:     delay,
	}
}

// Document baixa a URL e devolve o HTML já interpretado
func (f *Fetcher) Document(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status code: %d", resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

// Wait espera o intervalo entre requisições ou o cancelamento do contexto
func (f *Fetcher) Wait(ctx context.Context) error {
	if f.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(f.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
