package usecases_port

import (
	"context"

	"ads-service/internal/core/domain"

	"github.com/google/uuid"
)

type UpdateAdUseCase interface {
	Execute(ctx context.Context, adID uuid.UUID, patch domain.AdPatch) (*domain.Ad, error)
}
