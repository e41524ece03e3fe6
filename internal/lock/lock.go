// Package lock garante que cada rodada do monitor tenha um único executor.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLocked indica que outra execução já detém a trava
var ErrLocked = errors.New("trava já adquirida por outra execução")

// Locker adquire travas nomeadas. release libera a trava e pode ser chamada
// mais de uma vez.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), err error)
}

// Local mantém as travas na memória do processo
type Local struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocal cria um Locker em memória
func NewLocal() *Local {
	return &Local{locks: make(map[string]*sync.Mutex)}
}

// Acquire tenta pegar a trava sem esperar; ttl é ignorado
func (l *Local) Acquire(_ context.Context, name string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[name]
	if !ok {
		m = &sync.Mutex{}
		l.locks[name] = m
	}
	l.mu.Unlock()

	if !m.TryLock() {
		return nil, ErrLocked
	}

	var once sync.Once
	return func() { once.Do(m.Unlock) }, nil
}
