package port

import (
	"context"

	"ads-service/internal/core/domain"
)

// GeocoderPort - перевод произвольной адресной строки в координаты
// через внешний сервис. Реализация обязана соблюдать лимиты сервиса.
type GeocoderPort interface {
	Resolve(ctx context.Context, address string) (*domain.GeocodeResult, error)
}
