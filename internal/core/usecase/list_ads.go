package usecase

import (
	"context"
	"math"
	"sort"
	"strings"

	"ads-service/internal/contextkeys"
	"ads-service/internal/core/domain"
	"ads-service/internal/core/port"

	"golang.org/x/text/cases"
)

// ListAdsUseCase - чтение снимка коллекции и применение к нему запроса.
// Вся логика фильтрации/сортировки/пагинации - чистая функция над снимком,
// обновления, случившиеся после ReadAll, в результат не попадают.
type ListAdsUseCase struct {
	storage port.AdsRepositoryPort
}

func NewListAdsUseCase(storage port.AdsRepositoryPort) *ListAdsUseCase {
	return &ListAdsUseCase{storage: storage}
}

func (uc *ListAdsUseCase) Execute(ctx context.Context, query domain.AdsQuery) (*domain.AdsPage, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "ListAds",
		"page":     query.Page,
	})

	snapshot, err := uc.storage.ReadAll(ctx)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}

	result := applyQuery(snapshot, query)

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total_found":   result.Total,
		"items_on_page": len(result.Items),
	})
	return result, nil
}

// foldCaser - unicode case folding для регистронезависимых сравнений
var foldCaser = cases.Fold()

func fold(s string) string {
	return foldCaser.String(s)
}

// applyQuery применяет запрос к снимку коллекции. Порядок шагов
// фиксирован: текст -> категория -> цена -> наличие координат ->
// гео-радиус -> сортировка -> пагинация. Гео-фильтр делает дистанцию
// первичным ключом сортировки, поэтому он обязан идти до нее.
func applyQuery(snapshot []domain.Ad, query domain.AdsQuery) *domain.AdsPage {
	filtered := filterAds(snapshot, query)

	useGeo := query.UserLat != nil && query.UserLng != nil
	if useGeo {
		filtered = sortByDistance(filtered, query)
	} else {
		sortAds(filtered, query.SortBy, query.SortDir)
	}

	// Пагинация: страница не меньше 1, размер в пределах [1, MaxPageSize].
	// Total считается до вырезания окна.
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}

	total := len(filtered)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]domain.Ad, end-start)
	copy(items, filtered[start:end])

	return &domain.AdsPage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}

func filterAds(snapshot []domain.Ad, query domain.AdsQuery) []domain.Ad {
	filtered := make([]domain.Ad, 0, len(snapshot))

	text := fold(strings.TrimSpace(query.Text))
	category := fold(strings.TrimSpace(query.Category))

	for _, ad := range snapshot {
		if text != "" {
			if !strings.Contains(fold(ad.Title), text) &&
				!strings.Contains(fold(ad.Description), text) {
				continue
			}
		}

		if category != "" {
			if ad.Category == nil || fold(*ad.Category) != category {
				continue
			}
		}

		// Для фильтра по цене отсутствующая цена считается нулем.
		// Для сортировки она же считается минимально возможной -
		// асимметрия намеренная, см. sortPrice.
		price := 0.0
		if ad.Price != nil {
			price = *ad.Price
		}
		if query.PriceMin != nil && price < *query.PriceMin {
			continue
		}
		if query.PriceMax != nil && price > *query.PriceMax {
			continue
		}

		if query.HasLocation != nil {
			if *query.HasLocation != ad.HasCoordinates() {
				continue
			}
		}

		filtered = append(filtered, ad)
	}

	return filtered
}

// sortByDistance - ветка гео-фильтра: отбрасывает объявления без координат,
// считает дистанцию до каждого, режет по радиусу и сортирует с дистанцией
// в качестве первичного ключа. Запрошенная сортировка становится tie-break.
func sortByDistance(filtered []domain.Ad, query domain.AdsQuery) []domain.Ad {
	radius := domain.DefaultRadiusKm
	if query.RadiusKm != nil {
		radius = *query.RadiusKm
	}

	type adWithDistance struct {
		ad       domain.Ad
		distance float64
	}

	within := make([]adWithDistance, 0, len(filtered))
	for _, ad := range filtered {
		if !ad.HasCoordinates() {
			continue
		}
		d := haversineKm(*query.UserLat, *query.UserLng, *ad.Location.Lat, *ad.Location.Lng)
		if d <= radius { // граница включается
			within = append(within, adWithDistance{ad: ad, distance: d})
		}
	}

	less := lessFunc(query.SortBy, query.SortDir)
	sort.SliceStable(within, func(i, j int) bool {
		if within[i].distance != within[j].distance {
			return within[i].distance < within[j].distance
		}
		return less(within[i].ad, within[j].ad)
	})

	result := make([]domain.Ad, len(within))
	for i, wd := range within {
		result[i] = wd.ad
	}
	return result
}

func sortAds(ads []domain.Ad, sortBy, sortDir string) {
	less := lessFunc(sortBy, sortDir)
	sort.SliceStable(ads, func(i, j int) bool {
		return less(ads[i], ads[j])
	})
}

// lessFunc строит компаратор по полю сортировки. Неизвестное поле
// откатывается на createdAt; направление по умолчанию - desc.
func lessFunc(sortBy, sortDir string) func(a, b domain.Ad) bool {
	desc := !strings.EqualFold(sortDir, "asc")

	var cmp func(a, b domain.Ad) int
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "price":
		cmp = func(a, b domain.Ad) int {
			pa, pb := sortPrice(a), sortPrice(b)
			switch {
			case pa < pb:
				return -1
			case pa > pb:
				return 1
			default:
				return 0
			}
		}
	case "title":
		cmp = func(a, b domain.Ad) int {
			return strings.Compare(a.Title, b.Title)
		}
	case "updatedat":
		cmp = func(a, b domain.Ad) int {
			return a.UpdatedAt.Compare(b.UpdatedAt)
		}
	default: // createdAt и все неизвестные поля
		cmp = func(a, b domain.Ad) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}

	return func(a, b domain.Ad) bool {
		c := cmp(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	}
}

// sortPrice - ключ сортировки по цене: отсутствующая цена уходит в самый низ
func sortPrice(a domain.Ad) float64 {
	if a.Price == nil {
		return math.Inf(-1)
	}
	return *a.Price
}

const earthRadiusKm = 6371.0

// haversineKm - дистанция по дуге большого круга в километрах
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
