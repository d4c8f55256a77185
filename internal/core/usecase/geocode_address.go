package usecase

import (
	"context"
	"strings"

	"ads-service/internal/contextkeys"
	"ads-service/internal/core/domain"
	"ads-service/internal/core/port"
)

type GeocodeAddressUseCase struct {
	geocoder port.GeocoderPort
}

func NewGeocodeAddressUseCase(geocoder port.GeocoderPort) *GeocodeAddressUseCase {
	return &GeocodeAddressUseCase{geocoder: geocoder}
}

func (uc *GeocodeAddressUseCase) Execute(ctx context.Context, address string) (*domain.GeocodeResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "GeocodeAddress"})

	result, err := uc.geocoder.Resolve(ctx, address)
	if err != nil {
		// Ошибки геокодера - часть таксономии, REST-слой разберет их сам
		ucLogger.Warn("Geocoding failed", port.Fields{
			"address": strings.TrimSpace(address),
			"error":   err.Error(),
		})
		return nil, err
	}

	ucLogger.Info("Address resolved", port.Fields{
		"lat": result.Lat,
		"lng": result.Lng,
	})
	return result, nil
}
