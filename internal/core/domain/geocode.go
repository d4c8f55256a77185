package domain

// GeocodeResult - координаты, полученные от внешнего геокодера.
// Результат эфемерный: сохранять его или нет, решает вызывающая сторона.
type GeocodeResult struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formattedAddress,omitempty"`
}
