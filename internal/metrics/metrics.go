package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LinksGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affiliate_links_generated_total",
			Help: "Total de links de afiliado gerados por rede",
		},
		[]string{"network"},
	)

	PricesUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "monitor_prices_updated_total",
			Help: "Total de produtos com preço verificado",
		},
	)

	PriceDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "monitor_price_drops_total",
			Help: "Total de quedas de preço detectadas",
		},
	)

	DealsSelected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "monitor_daily_deals_selected",
			Help: "Quantidade de ofertas do dia na última seleção",
		},
	)

	ClicksDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "monitor_clicks_deleted_total",
			Help: "Total de cliques removidos pela limpeza",
		},
	)

	ProductsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_products_imported_total",
			Help: "Produtos importados pelo scraper",
		},
		[]string{"status"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Notificações enviadas por tipo e resultado",
		},
		[]string{"kind", "status"},
	)

	PassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "monitor_pass_duration_seconds",
			Help:    "Duração de cada rodada do monitor",
			Buckets: []float64{.05, .1, .5, 1, 5, 15, 30, 60, 300},
		},
		[]string{"pass"},
	)

	PassErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_pass_errors_total",
			Help: "Rodadas do monitor que terminaram com erro",
		},
		[]string{"pass"},
	)

	BotCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Comandos recebidos pelo bot",
		},
		[]string{"command"},
	)
)
