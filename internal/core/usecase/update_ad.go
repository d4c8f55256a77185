package usecase

import (
	"context"
	"errors"
	"time"

	"ads-service/internal/contextkeys"
	"ads-service/internal/core/domain"
	"ads-service/internal/core/port"

	"github.com/google/uuid"
)

type UpdateAdUseCase struct {
	storage port.AdsRepositoryPort
	events  port.AdEventsPort
}

func NewUpdateAdUseCase(storage port.AdsRepositoryPort, events port.AdEventsPort) *UpdateAdUseCase {
	return &UpdateAdUseCase{storage: storage, events: events}
}

func (uc *UpdateAdUseCase) Execute(ctx context.Context, adID uuid.UUID, patch domain.AdPatch) (*domain.Ad, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "UpdateAd",
		"ad_id":    adID.String(),
	})

	var updated domain.Ad
	err := uc.storage.Mutate(ctx, func(ads []domain.Ad) ([]domain.Ad, error) {
		idx := -1
		for i := range ads {
			if ads[i].ID == adID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, domain.ErrNotFound
		}

		applyPatch(&ads[idx], patch)
		ads[idx].UpdatedAt = time.Now().UTC()
		updated = ads[idx]
		return ads, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			ucLogger.Warn("Ad not found", nil)
		} else {
			ucLogger.Error("Failed to persist updated ad", err, nil)
		}
		return nil, err
	}

	ucLogger.Info("Ad updated", nil)

	if err := uc.events.AdUpdated(ctx, updated); err != nil {
		ucLogger.Warn("Failed to publish ad-updated event", port.Fields{"error": err.Error()})
	}

	return &updated, nil
}

// applyPatch - семантика частичного обновления. nil-поле патча
// оставляет существующее значение. Вложенные contact/location
// сливаются по полям; phone/email заменяются значениями из патча
// как есть, имя при отсутствии в патче сохраняется.
func applyPatch(ad *domain.Ad, patch domain.AdPatch) {
	if patch.Title != nil && *patch.Title != "" {
		ad.Title = *patch.Title
	}
	if patch.Description != nil && *patch.Description != "" {
		ad.Description = *patch.Description
	}
	if patch.Price != nil {
		ad.Price = patch.Price
	}
	if patch.Category != nil && *patch.Category != "" {
		ad.Category = patch.Category
	}

	if patch.Contact != nil {
		if ad.Contact == nil {
			ad.Contact = &domain.Contact{}
		}
		if patch.Contact.Name != nil && *patch.Contact.Name != "" {
			ad.Contact.Name = *patch.Contact.Name
		}
		ad.Contact.Phone = patch.Contact.Phone
		ad.Contact.Email = patch.Contact.Email
	}

	if patch.Location != nil {
		if ad.Location == nil {
			ad.Location = &domain.Location{}
		}
		if patch.Location.Address != nil && *patch.Location.Address != "" {
			ad.Location.Address = *patch.Location.Address
		}
		if patch.Location.Lat != nil {
			ad.Location.Lat = patch.Location.Lat
		}
		if patch.Location.Lng != nil {
			ad.Location.Lng = patch.Location.Lng
		}
	}
}
