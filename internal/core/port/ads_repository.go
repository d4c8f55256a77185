package port

import (
	"context"

	"ads-service/internal/core/domain"
)

// AdsRepositoryPort - хранилище коллекции объявлений.
//
// Хранилище работает с коллекцией целиком: каждая запись заменяет весь
// документ. Поэтому любая мутация обязана выполняться через Mutate -
// полная последовательность read-modify-write под одним захватом блокировки.
// Иначе два конкурентных писателя прочитают один и тот же снимок и
// последний молча затрет изменения первого.
type AdsRepositoryPort interface {
	// ReadAll возвращает снимок всей коллекции. Отсутствующий или
	// поврежденный файл трактуется как пустая коллекция, а не как ошибка.
	ReadAll(ctx context.Context) ([]domain.Ad, error)

	// WriteAll атомарно заменяет всю коллекцию. Ошибки записи
	// пробрасываются вызывающему - тихая потеря данных недопустима.
	WriteAll(ctx context.Context, ads []domain.Ad) error

	// Mutate выполняет fn над текущим снимком и записывает результат,
	// удерживая блокировку пути на протяжении всей последовательности.
	// Если fn возвращает ошибку, запись не выполняется.
	Mutate(ctx context.Context, fn func(ads []domain.Ad) ([]domain.Ad, error)) error
}
