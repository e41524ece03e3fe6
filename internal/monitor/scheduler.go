package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"bot-afiliados/config"
)

// Schedule define a agenda das rodadas. Intervalos <= 0 desligam a rodada.
type Schedule struct {
	Prices     time.Duration
	Deals      time.Duration
	Cleanup    time.Duration
	Scrape     time.Duration
	Digest     string // expressão cron de 5 campos; vazio desliga
	AutoScrape bool
}

// Scheduler dispara as rodadas do monitor dentro do processo
type Scheduler struct {
	cron    *cron.Cron
	monitor *Monitor
	log     *zap.Logger
	ctx     context.Context
}

// cronLogger adapta o zap para a interface de log do cron
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

// ScheduleFromConfig monta a agenda a partir da configuração carregada
func ScheduleFromConfig(cfg *config.Config) Schedule {
	return Schedule{
		Prices:     cfg.Intervals.Prices,
		Deals:      cfg.Intervals.Deals,
		Cleanup:    cfg.Intervals.Cleanup,
		Scrape:     cfg.Intervals.Scrape,
		Digest:     cfg.DigestCron,
		AutoScrape: cfg.AutoScrape,
	}
}

type job struct {
	pass     string
	interval time.Duration
}

// NewScheduler registra as rodadas do monitor conforme a agenda
func NewScheduler(m *Monitor, s Schedule, log *zap.Logger) (*Scheduler, error) {
	cl := cronLogger{log: log.Sugar()}
	sc := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		monitor: m,
		log:     log,
		ctx:     context.Background(),
	}

	every := []job{
		{PassPrices, s.Prices},
		{PassDeals, s.Deals},
		{PassCleanup, s.Cleanup},
	}
	if s.AutoScrape {
		every = append(every, job{PassScrape, s.Scrape})
	}

	for _, e := range every {
		if e.interval <= 0 {
			continue
		}
		if err := sc.add("@every "+e.interval.String(), e.pass); err != nil {
			return nil, err
		}
	}
	if s.Digest != "" {
		if err := sc.add(s.Digest, PassDigest); err != nil {
			return nil, err
		}
	}
	return sc, nil
}

func (s *Scheduler) add(spec, pass string) error {
	_, err := s.cron.AddFunc(spec, func() {
		// erros já são registrados pela própria rodada
		_ = s.monitor.RunPass(s.ctx, pass)
	})
	if err != nil {
		return fmt.Errorf("agenda %q da rodada %s: %w", spec, pass, err)
	}
	s.log.Info("Rodada agendada", zap.String("pass", pass), zap.String("schedule", spec))
	return nil
}

// Jobs retorna quantas rodadas estão agendadas
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start roda uma verificação de preços imediata e mantém a agenda até ctx
// ser cancelado. Espera as rodadas em andamento terminarem antes de retornar.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.log.Info("Monitor iniciado", zap.Int("jobs", s.Jobs()))

	// Verificar imediatamente na primeira execução
	_ = s.monitor.RunPass(ctx, PassPrices)

	s.cron.Start()
	<-ctx.Done()

	s.log.Info("Parando monitor")
	<-s.cron.Stop().Done()
}
