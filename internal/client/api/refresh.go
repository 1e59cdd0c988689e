package api

import (
	"context"
	"sync"
)

// refreshState описывает один проход обновления токенов.
// done закрывается по завершении; err после закрытия неизменяем.
type refreshState struct {
	done chan struct{}
	err  error
}

// refreshCoordinator гарантирует не более одного refresh-вызова
// одновременно на экземпляр клиента. Состояние принадлежит клиенту,
// а не пакету: несколько клиентов (мульти-тенантные сессии) не делят
// его между собой.
type refreshCoordinator struct {
	current *refreshState
	mu      sync.Mutex
}

// do выполняет fn, если refresh еще не идет; иначе паркует вызывающего
// до завершения текущего refresh и возвращает его результат.
// Запросы, получившие 401 во время чужого refresh, таким образом не
// порождают дублирующих обращений к refresh endpoint.
func (r *refreshCoordinator) do(ctx context.Context, fn func() error) error {
	r.mu.Lock()
	if st := r.current; st != nil {
		// REFRESHING: паркуемся до завершения
		r.mu.Unlock()
		select {
		case <-st.done:
			return st.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// IDLE -> REFRESHING
	st := &refreshState{done: make(chan struct{})}
	r.current = st
	r.mu.Unlock()

	st.err = fn()
	close(st.done)

	// REFRESHING -> IDLE
	r.mu.Lock()
	r.current = nil
	r.mu.Unlock()

	return st.err
}
