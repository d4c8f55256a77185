package usecases_port

import (
	"context"

	"ads-service/internal/core/domain"
)

type CreateAdUseCase interface {
	Execute(ctx context.Context, data domain.NewAdData) (*domain.Ad, error)
}
