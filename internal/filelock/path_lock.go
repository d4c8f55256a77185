// Package filelock - реестр эксклюзивных блокировок по пути файла.
// Хранилище заменяет файл целиком при каждой записи, поэтому
// последовательности read-modify-write должны быть атомарны от начала
// до конца. Блокировка advisory: защищает только от конкурентных
// операций внутри процесса, не от внешних писателей.
package filelock

import "sync"

// PathLock выдает по одному слоту на путь. Вызовы для разных
// путей друг друга не блокируют.
type PathLock struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func New() *PathLock {
	return &PathLock{locks: make(map[string]chan struct{})}
}

// Acquire блокирует вызывающего, пока путь не освободится
func (l *PathLock) Acquire(path string) {
	l.forPath(path) <- struct{}{}
}

// Release освобождает путь. Лишний Release - в том числе без
// предшествующего Acquire - тихий no-op, а не фатальная ошибка.
func (l *PathLock) Release(path string) {
	select {
	case <-l.forPath(path):
	default:
	}
}

// forPath возвращает семафор емкости 1 для пути
func (l *PathLock) forPath(path string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.locks[path]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[path] = ch
	}
	return ch
}
