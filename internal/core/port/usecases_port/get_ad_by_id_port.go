package usecases_port

import (
	"context"

	"ads-service/internal/core/domain"

	"github.com/google/uuid"
)

type GetAdByIDUseCase interface {
	Execute(ctx context.Context, adID uuid.UUID) (*domain.Ad, error)
}
