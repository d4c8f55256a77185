package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ads-service/internal/contextkeys"
	"ads-service/internal/contracts"
	"ads-service/internal/core/domain"
	"ads-service/internal/core/port"
	"ads-service/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AdsHandler struct {
	listAdsUC  usecases_port.ListAdsUseCase
	getAdUC    usecases_port.GetAdByIDUseCase
	createAdUC usecases_port.CreateAdUseCase
	updateAdUC usecases_port.UpdateAdUseCase
	deleteAdUC usecases_port.DeleteAdUseCase
}

func NewAdsHandler(listAdsUC usecases_port.ListAdsUseCase,
	getAdUC usecases_port.GetAdByIDUseCase,
	createAdUC usecases_port.CreateAdUseCase,
	updateAdUC usecases_port.UpdateAdUseCase,
	deleteAdUC usecases_port.DeleteAdUseCase) *AdsHandler {
	return &AdsHandler{
		listAdsUC:  listAdsUC,
		getAdUC:    getAdUC,
		createAdUC: createAdUC,
		updateAdUC: updateAdUC,
		deleteAdUC: deleteAdUC,
	}
}

// ListAds обрабатывает GET /api/v1/ads
func (h *AdsHandler) ListAds(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	adsQuery, err := parseAdsQuery(r)
	if err != nil {
		logger.Warn("Rejecting list request", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	page, err := h.listAdsUC.Execute(r.Context(), *adsQuery)
	if err != nil {
		logger.Error("Use case failed", err, port.Fields{"handler": "ListAds"})
		WriteJSONError(w, http.StatusInternalServerError, "Failed to retrieve ads")
		return
	}

	response := PagedAdsResponse{
		Items:    make([]AdResponse, len(page.Items)),
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}
	for i, ad := range page.Items {
		response.Items[i] = mapAdToResponse(ad)
	}

	RespondWithJSON(w, http.StatusOK, response)
}

// GetAdByID обрабатывает GET /api/v1/ads/{adID}
func (h *AdsHandler) GetAdByID(w http.ResponseWriter, r *http.Request) {
	adID, err := uuid.Parse(chi.URLParam(r, "adID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid ad id")
		return
	}

	ad, err := h.getAdUC.Execute(r.Context(), adID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, mapAdToResponse(*ad))
}

// CreateAd обрабатывает POST /api/v1/ads
func (h *AdsHandler) CreateAd(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	// Сначала валидация по схеме, потом разбор в DTO
	if err := contracts.ValidateRequest(contracts.SchemaCreateAd, body); err != nil {
		logger.Warn("Create request failed validation", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	var req CreateAdRequest
	if err := json.Unmarshal(body, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	data := domain.NewAdData{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
	}
	if req.Contact != nil {
		data.Contact = &domain.Contact{
			Name:  req.Contact.Name,
			Phone: req.Contact.Phone,
			Email: req.Contact.Email,
		}
	}
	if req.Location != nil {
		data.Location = &domain.Location{
			Address: req.Location.Address,
			Lat:     req.Location.Lat,
			Lng:     req.Location.Lng,
		}
	}

	created, err := h.createAdUC.Execute(r.Context(), data)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/ads/%s", created.ID))
	RespondWithJSON(w, http.StatusCreated, mapAdToResponse(*created))
}

// UpdateAd обрабатывает PUT /api/v1/ads/{adID}
func (h *AdsHandler) UpdateAd(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	adID, err := uuid.Parse(chi.URLParam(r, "adID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid ad id")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := contracts.ValidateRequest(contracts.SchemaUpdateAd, body); err != nil {
		logger.Warn("Update request failed validation", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	var req UpdateAdRequest
	if err := json.Unmarshal(body, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	patch := domain.AdPatch{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
	}
	if req.Contact != nil {
		patch.Contact = &domain.ContactPatch{
			Name:  req.Contact.Name,
			Phone: req.Contact.Phone,
			Email: req.Contact.Email,
		}
	}
	if req.Location != nil {
		patch.Location = &domain.LocationPatch{
			Address: req.Location.Address,
			Lat:     req.Location.Lat,
			Lng:     req.Location.Lng,
		}
	}

	updated, err := h.updateAdUC.Execute(r.Context(), adID, patch)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, mapAdToResponse(*updated))
}

// DeleteAd обрабатывает DELETE /api/v1/ads/{adID}
func (h *AdsHandler) DeleteAd(w http.ResponseWriter, r *http.Request) {
	adID, err := uuid.Parse(chi.URLParam(r, "adID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid ad id")
		return
	}

	if err := h.deleteAdUC.Execute(r.Context(), adID); err != nil {
		WriteDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseAdsQuery разбирает и проверяет query-параметры списка:
// minPrice <= maxPrice, sortDir из {asc, desc}, координаты зрителя
// только парой, radius > 0.
func parseAdsQuery(r *http.Request) (*domain.AdsQuery, error) {
	query := r.URL.Query()

	minPrice, err := parseFloat(query, "minPrice")
	if err != nil {
		return nil, fmt.Errorf("%w: minPrice must be a number", domain.ErrInvalidInput)
	}
	maxPrice, err := parseFloat(query, "maxPrice")
	if err != nil {
		return nil, fmt.Errorf("%w: maxPrice must be a number", domain.ErrInvalidInput)
	}
	if minPrice != nil && *minPrice < 0 {
		return nil, fmt.Errorf("%w: minPrice must be >= 0", domain.ErrInvalidInput)
	}
	if maxPrice != nil && *maxPrice < 0 {
		return nil, fmt.Errorf("%w: maxPrice must be >= 0", domain.ErrInvalidInput)
	}
	if minPrice != nil && maxPrice != nil && *minPrice > *maxPrice {
		return nil, fmt.Errorf("%w: minPrice must be less than or equal to maxPrice", domain.ErrInvalidInput)
	}

	hasLocation, err := parseBool(query, "hasLocation")
	if err != nil {
		return nil, fmt.Errorf("%w: hasLocation must be true or false", domain.ErrInvalidInput)
	}

	userLat, err := parseFloat(query, "userLat")
	if err != nil {
		return nil, fmt.Errorf("%w: userLat must be a number", domain.ErrInvalidInput)
	}
	userLng, err := parseFloat(query, "userLng")
	if err != nil {
		return nil, fmt.Errorf("%w: userLng must be a number", domain.ErrInvalidInput)
	}
	radius, err := parseFloat(query, "radius")
	if err != nil {
		return nil, fmt.Errorf("%w: radius must be a number", domain.ErrInvalidInput)
	}

	if userLat != nil || userLng != nil || radius != nil {
		if userLat == nil || userLng == nil {
			return nil, fmt.Errorf("%w: userLat and userLng must both be provided for location filtering", domain.ErrInvalidInput)
		}
		if *userLat < -90 || *userLat > 90 {
			return nil, fmt.Errorf("%w: userLat must be between -90 and 90", domain.ErrInvalidInput)
		}
		if *userLng < -180 || *userLng > 180 {
			return nil, fmt.Errorf("%w: userLng must be between -180 and 180", domain.ErrInvalidInput)
		}
		if radius != nil && *radius <= 0 {
			return nil, fmt.Errorf("%w: radius must be greater than 0", domain.ErrInvalidInput)
		}
	}

	sortDir := parseString(query, "sortDir")
	if sortDir != "" && !strings.EqualFold(sortDir, "asc") && !strings.EqualFold(sortDir, "desc") {
		return nil, fmt.Errorf("%w: sortDir must be 'asc' or 'desc'", domain.ErrInvalidInput)
	}
	if sortDir == "" {
		sortDir = domain.DefaultSortDir
	}

	sortBy := parseString(query, "sortBy")
	if sortBy == "" {
		sortBy = domain.DefaultSortBy
	}

	return &domain.AdsQuery{
		Text:        parseString(query, "q"),
		Category:    parseString(query, "category"),
		PriceMin:    minPrice,
		PriceMax:    maxPrice,
		HasLocation: hasLocation,
		UserLat:     userLat,
		UserLng:     userLng,
		RadiusKm:    radius,
		SortBy:      sortBy,
		SortDir:     sortDir,
		Page:        parseIntOrDefault(query, "page", 1),
		PageSize:    parseIntOrDefault(query, "pageSize", domain.DefaultPageSize),
	}, nil
}
