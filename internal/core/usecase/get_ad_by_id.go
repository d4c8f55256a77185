package usecase

import (
	"context"

	"ads-service/internal/contextkeys"
	"ads-service/internal/core/domain"
	"ads-service/internal/core/port"

	"github.com/google/uuid"
)

type GetAdByIDUseCase struct {
	storage port.AdsRepositoryPort
}

func NewGetAdByIDUseCase(storage port.AdsRepositoryPort) *GetAdByIDUseCase {
	return &GetAdByIDUseCase{storage: storage}
}

func (uc *GetAdByIDUseCase) Execute(ctx context.Context, adID uuid.UUID) (*domain.Ad, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetAdByID",
		"ad_id":    adID.String(),
	})

	ads, err := uc.storage.ReadAll(ctx)
	if err != nil {
		ucLogger.Error("Failed to read ads", err, nil)
		return nil, err
	}

	for i := range ads {
		if ads[i].ID == adID {
			return &ads[i], nil
		}
	}

	ucLogger.Warn("Ad not found", nil)
	return nil, domain.ErrNotFound
}
