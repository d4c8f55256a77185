package rest

import (
	"time"

	"ads-service/internal/core/domain"
)

// ContactDTO - контакт в запросах и ответах
type ContactDTO struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}

// LocationDTO - адрес в запросах и ответах
type LocationDTO struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Geohash string   `json:"geohash,omitempty"`
}

// AdResponse - DTO одного объявления
type AdResponse struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Price       *float64     `json:"price,omitempty"`
	Category    *string      `json:"category,omitempty"`
	Contact     *ContactDTO  `json:"contact,omitempty"`
	Location    *LocationDTO `json:"location,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// PagedAdsResponse - DTO страницы списка
type PagedAdsResponse struct {
	Items    []AdResponse `json:"items"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
}

// CreateAdRequest - тело POST /ads (уже провалидированное схемой)
type CreateAdRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Price       *float64     `json:"price"`
	Category    *string      `json:"category"`
	Contact     *ContactDTO  `json:"contact"`
	Location    *LocationDTO `json:"location"`
}

// UpdateAdRequest - тело PUT /ads/{id}. Все поля опциональны;
// отсутствующее или null поле означает "не менять". Схема update-ad
// требует name внутри contact-патча, поэтому через REST имя приходит
// всегда; сохранение старого имени при его отсутствии в патче
// доступно только прямым вызовам use case.
type UpdateAdRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Contact     *struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
		Email *string `json:"email"`
	} `json:"contact"`
	Location *struct {
		Address *string  `json:"address"`
		Lat     *float64 `json:"lat"`
		Lng     *float64 `json:"lng"`
	} `json:"location"`
}

// GeocodeRequest - тело POST /geocoding/geocode
type GeocodeRequest struct {
	Address string `json:"address"`
}

func mapAdToResponse(ad domain.Ad) AdResponse {
	resp := AdResponse{
		ID:          ad.ID.String(),
		Title:       ad.Title,
		Description: ad.Description,
		Price:       ad.Price,
		Category:    ad.Category,
		CreatedAt:   ad.CreatedAt,
		UpdatedAt:   ad.UpdatedAt,
	}
	if ad.Contact != nil {
		resp.Contact = &ContactDTO{
			Name:  ad.Contact.Name,
			Phone: ad.Contact.Phone,
			Email: ad.Contact.Email,
		}
	}
	if ad.Location != nil {
		resp.Location = &LocationDTO{
			Address: ad.Location.Address,
			Lat:     ad.Location.Lat,
			Lng:     ad.Location.Lng,
			Geohash: ad.Location.Geohash,
		}
	}
	return resp
}
