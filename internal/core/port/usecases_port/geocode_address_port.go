package usecases_port

import (
	"context"

	"ads-service/internal/core/domain"
)

type GeocodeAddressUseCase interface {
	Execute(ctx context.Context, address string) (*domain.GeocodeResult, error)
}
