package domain

// Сортировка по умолчанию и границы пагинации
const (
	DefaultSortBy   = "createdAt"
	DefaultSortDir  = "desc"
	DefaultPageSize = 10
	MaxPageSize     = 100

	// DefaultRadiusKm - радиус гео-фильтра, если он не указан явно
	DefaultRadiusKm = 10.0
)

// AdsQuery - спецификация запроса списка объявлений.
// Указатели отличают "не задано" от нулевого значения.
type AdsQuery struct {
	Text        string
	Category    string
	PriceMin    *float64
	PriceMax    *float64
	HasLocation *bool

	// Гео-фильтр включается только когда заданы обе координаты
	UserLat  *float64
	UserLng  *float64
	RadiusKm *float64

	SortBy  string
	SortDir string

	Page     int
	PageSize int
}

// AdsPage - страница результата вместе с эффективными
// (уже ограниченными) параметрами пагинации
type AdsPage struct {
	Items    []Ad
	Total    int
	Page     int
	PageSize int
}
