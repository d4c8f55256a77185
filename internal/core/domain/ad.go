package domain

import (
	"time"

	"github.com/google/uuid"
)

// Contact - контактные данные продавца. Имя обязательно,
// дополнительно должен быть указан хотя бы телефон или email
// (это проверяется на уровне contracts, а не здесь).
type Contact struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}

// Location - адрес объявления. Координаты либо присутствуют обе,
// либо отсутствуют обе. Geohash вычисляется при сохранении,
// когда обе координаты заполнены.
type Location struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Geohash string   `json:"geohash,omitempty"`
}

// Ad - одно объявление. Коллекция объявлений целиком хранится
// в одном JSON-файле, поэтому структура сериализуется напрямую.
type Ad struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       *float64  `json:"price,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Contact     *Contact  `json:"contact,omitempty"`
	Location    *Location `json:"location,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasCoordinates сообщает, заполнены ли обе координаты
func (a Ad) HasCoordinates() bool {
	return a.Location != nil && a.Location.Lat != nil && a.Location.Lng != nil
}

// NewAdData - данные для создания объявления (уже прошедшие валидацию contracts)
type NewAdData struct {
	Title       string
	Description string
	Price       *float64
	Category    *string
	Contact     *Contact
	Location    *Location
}

// ContactPatch - частичное обновление контакта. Отсутствующее имя
// сохраняет старое значение; phone/email заменяются как есть,
// nil в патче очищает поле.
type ContactPatch struct {
	Name  *string
	Phone *string
	Email *string
}

// LocationPatch - частичное обновление адреса, слияние по полям
type LocationPatch struct {
	Address *string
	Lat     *float64
	Lng     *float64
}

// AdPatch - частичное обновление объявления. nil-поле означает "не менять".
// Вложенный объект со значением nil также означает "не менять" -
// очистить contact/location через частичное обновление нельзя.
type AdPatch struct {
	Title       *string
	Description *string
	Price       *float64
	Category    *string
	Contact     *ContactPatch
	Location    *LocationPatch
}
