package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Redis usa SET NX com expiração para travas compartilhadas entre processos
type Redis struct {
	client redis.UniversalClient
	prefix string
	log    *zap.Logger
}

// NewRedis cria um Locker sobre um cliente Redis
func NewRedis(client redis.UniversalClient, log *zap.Logger) *Redis {
	return &Redis{client: client, prefix: "bot-afiliados:lock:", log: log}
}

// Acquire grava a trava com um token único; a liberação só apaga a chave se
// o token ainda for o nosso
func (r *Redis) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	key := r.prefix + name
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("adquirindo trava %s: %w", name, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	r.log.Debug("Trava adquirida", zap.String("lock", name), zap.Duration("ttl", ttl))

	var once sync.Once
	return func() { once.Do(func() { r.release(name, key, token) }) }, nil
}

func (r *Redis) release(name, key, token string) {
	// contexto próprio: a rodada pode ter sido cancelada
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := releaseScript.Run(ctx, r.client, []string{key}, token).Int()
	if err != nil {
		r.log.Warn("Erro ao liberar trava", zap.String("lock", name), zap.Error(err))
		return
	}
	if n == 0 {
		r.log.Warn("Trava expirou antes da liberação", zap.String("lock", name))
	}
}
