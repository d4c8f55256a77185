package rest

import (
	"encoding/json"
	"io"
	"net/http"

	"ads-service/internal/contextkeys"
	"ads-service/internal/contracts"
	"ads-service/internal/core/port"
	"ads-service/internal/core/port/usecases_port"
)

type GeocodingHandler struct {
	geocodeUC usecases_port.GeocodeAddressUseCase
}

func NewGeocodingHandler(geocodeUC usecases_port.GeocodeAddressUseCase) *GeocodingHandler {
	return &GeocodingHandler{geocodeUC: geocodeUC}
}

// Geocode обрабатывает POST /api/v1/geocoding/geocode
func (h *GeocodingHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := contracts.ValidateRequest(contracts.SchemaGeocode, body); err != nil {
		logger.Warn("Geocode request failed validation", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	var req GeocodeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	result, err := h.geocodeUC.Execute(r.Context(), req.Address)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, result)
}
