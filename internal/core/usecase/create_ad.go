package usecase

import (
	"context"
	"time"

	"ads-service/internal/contextkeys"
	"ads-service/internal/core/domain"
	"ads-service/internal/core/port"

	"github.com/google/uuid"
)

type CreateAdUseCase struct {
	storage port.AdsRepositoryPort
	events  port.AdEventsPort
}

func NewCreateAdUseCase(storage port.AdsRepositoryPort, events port.AdEventsPort) *CreateAdUseCase {
	return &CreateAdUseCase{storage: storage, events: events}
}

func (uc *CreateAdUseCase) Execute(ctx context.Context, data domain.NewAdData) (*domain.Ad, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "CreateAd"})

	now := time.Now().UTC()
	ad := domain.Ad{
		ID:          uuid.New(),
		Title:       data.Title,
		Description: data.Description,
		Price:       data.Price,
		Category:    data.Category,
		Contact:     data.Contact,
		Location:    data.Location,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Вся последовательность read-modify-write под одним захватом блокировки
	err := uc.storage.Mutate(ctx, func(ads []domain.Ad) ([]domain.Ad, error) {
		return append(ads, ad), nil
	})
	if err != nil {
		ucLogger.Error("Failed to persist new ad", err, nil)
		return nil, err
	}

	ucLogger.Info("Ad created", port.Fields{"ad_id": ad.ID.String()})

	if err := uc.events.AdCreated(ctx, ad); err != nil {
		// Публикация событий best-effort, операцию не откатываем
		ucLogger.Warn("Failed to publish ad-created event", port.Fields{"error": err.Error()})
	}

	return &ad, nil
}
