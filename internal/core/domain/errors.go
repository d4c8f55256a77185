package domain

import "errors"

// Таксономия ошибок сервиса. REST-слой маппит их в HTTP-статусы,
// поэтому все ошибки ядра должны оборачивать один из этих сентинелов.
var (
	// ErrInvalidInput - некорректный запрос клиента, не ретраится
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound - объявление с таким идентификатором не существует
	ErrNotFound = errors.New("ad not found")

	// ErrAddressNotFound - геокодер не нашел ни одного кандидата
	ErrAddressNotFound = errors.New("address not found")

	// ErrUpstreamUnavailable - внешний геокодер недоступен или вернул не-2xx
	ErrUpstreamUnavailable = errors.New("geocoding upstream unavailable")

	// ErrUpstreamMalformed - ответ геокодера не удалось разобрать
	ErrUpstreamMalformed = errors.New("geocoding upstream returned malformed response")
)
