package service

import "sync"

// UserLocks serializa las corridas del pipeline por usuario: la escritura del
// perfil y la lectura posterior del recomendador no deben intercalarse para el
// mismo usuario. Usuarios distintos corren en paralelo sin contención.
type UserLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire toma el lock del usuario y devuelve la función para liberarlo.
func (l *UserLocks) Acquire(userID string) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
