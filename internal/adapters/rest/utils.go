package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"ads-service/internal/core/domain"
)

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// RespondWithJSON отправляет JSON-ответ
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// WriteDomainError маппит ошибку ядра в HTTP-статус.
// Ошибки геокодера наружу уходят с обобщенным сообщением.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, "Ad not found")
	case errors.Is(err, domain.ErrAddressNotFound):
		WriteJSONError(w, http.StatusNotFound, "Address not found")
	case errors.Is(err, domain.ErrUpstreamUnavailable), errors.Is(err, domain.ErrUpstreamMalformed):
		WriteJSONError(w, http.StatusInternalServerError, "Failed to geocode address")
	default:
		WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// --- Хелперы разбора query-параметров ---

func parseString(query url.Values, key string) string {
	return query.Get(key)
}

func parseFloat(query url.Values, key string) (*float64, error) {
	raw := query.Get(key)
	if raw == "" {
		return nil, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &val, nil
}

func parseBool(query url.Values, key string) (*bool, error) {
	raw := query.Get(key)
	if raw == "" {
		return nil, nil
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &val, nil
}

func parseIntOrDefault(query url.Values, key string, def int) int {
	raw := query.Get(key)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
