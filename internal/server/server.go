// Package server expõe a superfície HTTP de operação: saúde, métricas,
// estatísticas e o redirecionamento rastreado dos links.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bot-afiliados/internal/catalog"
	"bot-afiliados/internal/models"
)

// Pinger verifica a conexão com o banco
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsSource fornece os totais do catálogo
type StatsSource interface {
	Stats(ctx context.Context) (*models.MonitoringStats, error)
}

// ClickResolver registra o clique e devolve o link de destino
type ClickResolver interface {
	ResolveClick(ctx context.Context, productID, telegramID int64, info catalog.ClickInfo) (string, error)
}

type handler struct {
	db     Pinger
	stats  StatsSource
	clicks ClickResolver
	log    *zap.Logger
}

// NewRouter monta as rotas HTTP
func NewRouter(db Pinger, stats StatsSource, clicks ClickResolver, log *zap.Logger) http.Handler {
	h := &handler{db: db, stats: stats, clicks: clicks, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/stats", h.statsJSON)
	r.Get("/go/{productID}", h.redirect)
	return r
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Debug("Requisição HTTP",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.Warn("Banco indisponível no health check", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "up"})
}

func (h *handler) statsJSON(w http.ResponseWriter, r *http.Request) {
	s, err := h.stats.Stats(r.Context())
	if err != nil {
		h.log.Error("Erro ao buscar estatísticas", zap.Error(err))
		http.Error(w, "erro ao buscar estatísticas", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// redirect registra o clique e redireciona para o link de afiliado.
// O parâmetro u é o ID do Telegram de quem recebeu o link.
func (h *handler) redirect(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		http.Error(w, "produto inválido", http.StatusBadRequest)
		return
	}
	telegramID, _ := strconv.ParseInt(r.URL.Query().Get("u"), 10, 64)

	info := catalog.ClickInfo{IPAddress: clientIP(r), UserAgent: r.UserAgent()}
	link, err := h.clicks.ResolveClick(r.Context(), productID, telegramID, info)
	if errors.Is(err, catalog.ErrProductUnavailable) {
		http.Error(w, "produto não encontrado", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("Erro ao resolver clique", zap.Int64("product_id", productID), zap.Error(err))
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, link, http.StatusFound)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Server é o servidor HTTP com desligamento gracioso
type Server struct {
	srv *http.Server
	log *zap.Logger
}

// New cria o servidor no endereço informado
func New(addr string, h http.Handler, log *zap.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Run atende requisições até ctx ser cancelado
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Servidor HTTP iniciado", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("Parando servidor HTTP")
	return s.srv.Shutdown(shutdownCtx)
}
