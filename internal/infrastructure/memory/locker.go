package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
)

var _ inventory.SessionLocker = (*Locker)(nil)

// Locker exclusión mutua por clave dentro del proceso.
type Locker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{} // capacidad 1: lleno = tomado
	refs int
}

// NewLocker crea un locker vacío.
func NewLocker() *Locker {
	return &Locker{slots: make(map[string]*slot)}
}

// Lock espera hasta obtener la clave o hasta que ctx termine.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.release(key, s)
		})
	}, nil
}

func (l *Locker) release(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
