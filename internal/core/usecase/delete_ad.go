package usecase

import (
	"context"
	"errors"

	"ads-service/internal/contextkeys"
	"ads-service/internal/core/domain"
	"ads-service/internal/core/port"

	"github.com/google/uuid"
)

type DeleteAdUseCase struct {
	storage port.AdsRepositoryPort
	events  port.AdEventsPort
}

func NewDeleteAdUseCase(storage port.AdsRepositoryPort, events port.AdEventsPort) *DeleteAdUseCase {
	return &DeleteAdUseCase{storage: storage, events: events}
}

func (uc *DeleteAdUseCase) Execute(ctx context.Context, adID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "DeleteAd",
		"ad_id":    adID.String(),
	})

	err := uc.storage.Mutate(ctx, func(ads []domain.Ad) ([]domain.Ad, error) {
		for i := range ads {
			if ads[i].ID == adID {
				return append(ads[:i], ads[i+1:]...), nil
			}
		}
		return nil, domain.ErrNotFound
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			ucLogger.Warn("Ad not found", nil)
		} else {
			ucLogger.Error("Failed to delete ad", err, nil)
		}
		return err
	}

	ucLogger.Info("Ad deleted", nil)

	if err := uc.events.AdDeleted(ctx, adID); err != nil {
		ucLogger.Warn("Failed to publish ad-deleted event", port.Fields{"error": err.Error()})
	}

	return nil
}
