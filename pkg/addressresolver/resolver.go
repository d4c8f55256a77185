// Package addressresolver реализует отложенное (debounce) разрешение
// адреса в координаты поверх произвольного геокодера. Машина состояний
// повторяет поведение формы ввода адреса: ввод перезапускает таймер,
// устаревшие ответы отбрасываются, ошибка заставляет повторить запрос
// даже для того же адреса.
package addressresolver

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
)

// State - текущее состояние машины разрешения адреса
type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateInFlight
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateInFlight:
		return "in_flight"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultDebounce - пауза после последнего изменения адреса перед запросом
const DefaultDebounce = 1500 * time.Millisecond

// Result - координаты, полученные от геокодера
type Result struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
}

// Geocoder - внешний геокодер, которому делегируется разрешение
type Geocoder interface {
	Resolve(ctx context.Context, address string) (*Result, error)
}

// Snapshot - наблюдаемое состояние резолвера в момент времени
type Snapshot struct {
	State            State
	Address          string
	Lat              *float64
	Lng              *float64
	FormattedAddress string
	Err              string
}

// Listener вызывается после каждого перехода состояния
type Listener func(Snapshot)

type Option func(*Resolver)

// WithDebounce задает паузу перед отправкой запроса
func WithDebounce(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.debounce = d
		}
	}
}

// WithListener подписывает наблюдателя на переходы состояния
func WithListener(l Listener) Option {
	return func(r *Resolver) { r.listener = l }
}

var foldCaser = cases.Fold()

// normalize приводит адрес к канонической форме для сравнения
func normalize(s string) string {
	return foldCaser.String(strings.TrimSpace(s))
}

// Resolver - потокобезопасная машина состояний разрешения адреса.
// Все поля защищены одним мьютексом; горутина запроса сверяет свой id
// и адрес перед записью результата, поэтому устаревшие ответы никогда
// не затирают более новое состояние.
type Resolver struct {
	geocoder Geocoder
	debounce time.Duration
	listener Listener

	mu             sync.Mutex
	closed         bool
	state          State
	address        string // как ввел пользователь
	norm           string // нормализованная форма
	lat, lng       *float64
	formatted      string
	errMsg         string
	lastDispatched string // нормализованный адрес последнего запроса
	lastResolved   string // нормализованный адрес последнего успеха

	nextID    uint64
	currentID uint64
	timer     *time.Timer
	cancel    context.CancelFunc
}

// New создает резолвер поверх геокодера
func New(geocoder Geocoder, opts ...Option) *Resolver {
	r := &Resolver{
		geocoder: geocoder,
		debounce: DefaultDebounce,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetAddress сообщает резолверу новое значение поля адреса.
// Пустое значение сбрасывает координаты, но сохраняет последнюю ошибку.
func (r *Resolver) SetAddress(address string) {
	r.mu.Lock()

	if r.closed {
		r.mu.Unlock()
		return
	}

	norm := normalize(address)
	r.address = address

	if norm == "" {
		r.cancelPendingLocked()
		r.norm = ""
		r.lat, r.lng = nil, nil
		r.formatted = ""
		r.lastDispatched = ""
		r.state = StateIdle
		r.notifyLocked()
		return
	}

	// Если этот адрес уже успешно разрешен и координаты на месте,
	// повторный запрос не нужен
	if r.errMsg == "" && norm == r.lastResolved && r.lat != nil && r.lng != nil {
		r.norm = norm
		r.state = StateSucceeded
		r.notifyLocked()
		return
	}

	r.cancelPendingLocked()
	r.norm = norm
	r.state = StateDebouncing
	r.timer = time.AfterFunc(r.debounce, func() { r.dispatch(norm) })
	r.notifyLocked()
}

// dispatch вызывается таймером после паузы
func (r *Resolver) dispatch(norm string) {
	r.mu.Lock()

	// Адрес успели поменять, пока таймер ждал
	if r.closed || norm != r.norm || r.state != StateDebouncing {
		r.mu.Unlock()
		return
	}

	r.nextID++
	id := r.nextID
	r.currentID = id
	r.lastDispatched = norm

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.state = StateInFlight
	address := strings.TrimSpace(r.address)
	go r.run(ctx, id, norm, address)
	r.notifyLocked()
}

// run выполняет запрос к геокодеру и применяет результат,
// если он все еще актуален
func (r *Resolver) run(ctx context.Context, id uint64, norm, address string) {
	result, err := r.geocoder.Resolve(ctx, address)

	r.mu.Lock()

	// Ответ устарел: после отправки адрес поменяли или пришел более
	// новый запрос
	if r.closed || id != r.currentID || norm != r.norm {
		r.mu.Unlock()
		return
	}

	// Запрос завершен, его контекст больше не нужен
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}

	if err != nil {
		r.state = StateFailed
		r.errMsg = err.Error()
		r.lat, r.lng = nil, nil
		r.formatted = ""
		// Сбрасываем, чтобы повторная отправка того же адреса ушла в геокодер
		r.lastResolved = ""
		r.notifyLocked()
		return
	}

	lat, lng := result.Lat, result.Lng
	r.state = StateSucceeded
	r.errMsg = ""
	r.lat, r.lng = &lat, &lng
	r.formatted = result.FormattedAddress
	r.lastResolved = norm
	r.notifyLocked()
}

// Snapshot возвращает копию текущего состояния
func (r *Resolver) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Close останавливает таймер и отменяет запрос в полете
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.cancelPendingLocked()
}

func (r *Resolver) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:            r.state,
		Address:          r.address,
		FormattedAddress: r.formatted,
		Err:              r.errMsg,
	}
	if r.lat != nil {
		lat := *r.lat
		snap.Lat = &lat
	}
	if r.lng != nil {
		lng := *r.lng
		snap.Lng = &lng
	}
	return snap
}

// cancelPendingLocked останавливает таймер и отменяет контекст запроса.
// Инкремент currentID гарантирует, что ответ отмененного запроса
// будет отброшен, даже если Resolve уже успел вернуться.
func (r *Resolver) cancelPendingLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.nextID++
	r.currentID = r.nextID
}

// notifyLocked снимает снимок, отпускает мьютекс и зовет слушателя
func (r *Resolver) notifyLocked() {
	snap := r.snapshotLocked()
	listener := r.listener
	r.mu.Unlock()
	if listener != nil {
		listener(snap)
	}
}
