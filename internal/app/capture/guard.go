package capture

import "sync/atomic"

// Guard флаг «прогон выполняется». Проверка и установка выполняются одним атомарным шагом.
type Guard struct {
	busy atomic.Bool
}

// TryAcquire занимает guard; false: прогон уже идёт.
func (g *Guard) TryAcquire() bool { return g.busy.CompareAndSwap(false, true) }

// Release освобождает guard.
func (g *Guard) Release() { g.busy.Store(false) }
