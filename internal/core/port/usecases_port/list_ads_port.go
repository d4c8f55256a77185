package usecases_port

import (
	"context"

	"ads-service/internal/core/domain"
)

type ListAdsUseCase interface {
	Execute(ctx context.Context, query domain.AdsQuery) (*domain.AdsPage, error)
}
