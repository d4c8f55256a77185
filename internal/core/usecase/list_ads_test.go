package usecase

import (
	"testing"
	"time"

	"ads-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func makeAd(title string, opts ...func(*domain.Ad)) domain.Ad {
	ad := domain.Ad{
		ID:          uuid.New(),
		Title:       title,
		Description: "description of " + title,
		CreatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(&ad)
	}
	return ad
}

func withPrice(p float64) func(*domain.Ad) {
	return func(ad *domain.Ad) { ad.Price = &p }
}

func withCategory(c string) func(*domain.Ad) {
	return func(ad *domain.Ad) { ad.Category = &c }
}

func withCoords(lat, lng float64) func(*domain.Ad) {
	return func(ad *domain.Ad) {
		ad.Location = &domain.Location{Address: "somewhere", Lat: &lat, Lng: &lng}
	}
}

func withCreatedAt(ts time.Time) func(*domain.Ad) {
	return func(ad *domain.Ad) { ad.CreatedAt = ts }
}

func defaultQuery() domain.AdsQuery {
	return domain.AdsQuery{
		SortBy:   domain.DefaultSortBy,
		SortDir:  domain.DefaultSortDir,
		Page:     1,
		PageSize: domain.DefaultPageSize,
	}
}

func titles(ads []domain.Ad) []string {
	out := make([]string, len(ads))
	for i, ad := range ads {
		out[i] = ad.Title
	}
	return out
}

func TestTextFilterMatchesTitleAndDescriptionCaseInsensitive(t *testing.T) {
	snapshot := []domain.Ad{
		makeAd("Mountain BIKE"),
		makeAd("Car", func(ad *domain.Ad) { ad.Description = "comes with a bike rack" }),
		makeAd("Sofa"),
	}

	query := defaultQuery()
	query.Text = "bike"
	page := applyQuery(snapshot, query)

	assert.Equal(t, 2, page.Total)
	assert.ElementsMatch(t, []string{"Mountain BIKE", "Car"}, titles(page.Items))
}

func TestCategoryFilterIsExactAndCaseInsensitive(t *testing.T) {
	snapshot := []domain.Ad{
		makeAd("A", withCategory("Electronics")),
		makeAd("B", withCategory("electronics")),
		makeAd("C", withCategory("Electro")),
		makeAd("D"), // без категории
	}

	query := defaultQuery()
	query.Category = "ELECTRONICS"
	page := applyQuery(snapshot, query)

	assert.Equal(t, 2, page.Total)
	assert.ElementsMatch(t, []string{"A", "B"}, titles(page.Items))
}

func TestPriceFilterTreatsMissingPriceAsZero(t *testing.T) {
	snapshot := []domain.Ad{
		makeAd("Free"), // цены нет -> 0
		makeAd("Cheap", withPrice(10)),
		makeAd("Expensive", withPrice(1000)),
	}

	query := defaultQuery()
	query.PriceMax = ptr(100.0)
	page := applyQuery(snapshot, query)
	assert.ElementsMatch(t, []string{"Free", "Cheap"}, titles(page.Items))

	query = defaultQuery()
	query.PriceMin = ptr(1.0)
	page = applyQuery(snapshot, query)
	assert.ElementsMatch(t, []string{"Cheap", "Expensive"}, titles(page.Items))
}

func TestPriceSortPutsMissingPriceFirstAscending(t *testing.T) {
	snapshot := []domain.Ad{
		makeAd("A", withPrice(50)),
		makeAd("B"), // цены нет -> -Inf при сортировке
		makeAd("C", withPrice(5)),
	}

	query := defaultQuery()
	query.SortBy = "price"
	query.SortDir = "asc"
	page := applyQuery(snapshot, query)

	assert.Equal(t, []string{"B", "C", "A"}, titles(page.Items))
}

func TestHasLocationFilterIsTriState(t *testing.T) {
	snapshot := []domain.Ad{
		makeAd("With coords", withCoords(53.9, 27.56)),
		makeAd("Address only", func(ad *domain.Ad) {
			ad.Location = &domain.Location{Address: "Minsk"}
		}),
		makeAd("Nothing"),
	}

	query := defaultQuery()
	page := applyQuery(snapshot, query)
	assert.Equal(t, 3, page.Total)

	query.HasLocation = ptr(true)
	page = applyQuery(snapshot, query)
	assert.Equal(t, []string{"With coords"}, titles(page.Items))

	// Адрес без координат не считается наличием локации
	query.HasLocation = ptr(false)
	page = applyQuery(snapshot, query)
	assert.ElementsMatch(t, []string{"Address only", "Nothing"}, titles(page.Items))
}

func TestGeoFilterUsesClosedBoundary(t *testing.T) {
	snapshot := []domain.Ad{
		makeAd("On boundary", withCoords(0, 0.09)),
		makeAd("Inside", withCoords(0, 0.01)),
		makeAd("Outside", withCoords(0, 0.2)),
	}

	boundary := haversineKm(0, 0, 0, 0.09)

	query := defaultQuery()
	query.UserLat = ptr(0.0)
	query.UserLng = ptr(0.0)
	query.RadiusKm = ptr(boundary)
	page := applyQuery(snapshot, query)

	assert.ElementsMatch(t, []string{"Inside", "On boundary"}, titles(page.Items))

	// Чуть меньший радиус выталкивает граничную точку
	query.RadiusKm = ptr(boundary - 0.001)
	page = applyQuery(snapshot, query)
	assert.Equal(t, []string{"Inside"}, titles(page.Items))
}

func TestGeoFilterDefaultRadiusIsTenKm(t *testing.T) {
	snapshot := []domain.Ad{
		makeAd("Near", withCoords(0, 0.08)),  // ~8.9 км
		makeAd("Far", withCoords(0, 0.1)),    // ~11.1 км
		makeAd("No coords"),
	}

	query := defaultQuery()
	query.UserLat = ptr(0.0)
	query.UserLng = ptr(0.0)
	page := applyQuery(snapshot, query)

	assert.Equal(t, []string{"Near"}, titles(page.Items))
}

func TestGeoFilterSortsByDistanceFirst(t *testing.T) {
	snapshot := []domain.Ad{
		makeAd("Farther", withCoords(0, 0.05), withPrice(1)),
		makeAd("Closer", withCoords(0, 0.01), withPrice(1000)),
	}

	// Сортировка по цене запрошена, но дистанция - первичный ключ
	query := defaultQuery()
	query.UserLat = ptr(0.0)
	query.UserLng = ptr(0.0)
	query.SortBy = "price"
	query.SortDir = "asc"
	page := applyQuery(snapshot, query)

	assert.Equal(t, []string{"Closer", "Farther"}, titles(page.Items))
}

func TestDefaultSortIsCreatedAtDescending(t *testing.T) {
	snapshot := []domain.Ad{
		makeAd("Old", withCreatedAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))),
		makeAd("New", withCreatedAt(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))),
		makeAd("Middle", withCreatedAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))),
	}

	page := applyQuery(snapshot, defaultQuery())
	assert.Equal(t, []string{"New", "Middle", "Old"}, titles(page.Items))
}

func TestUnknownSortByFallsBackToCreatedAt(t *testing.T) {
	snapshot := []domain.Ad{
		makeAd("Old", withCreatedAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))),
		makeAd("New", withCreatedAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))),
	}

	query := defaultQuery()
	query.SortBy = "popularity"
	page := applyQuery(snapshot, query)
	assert.Equal(t, []string{"New", "Old"}, titles(page.Items))
}

func TestTitleSortIsOrdinal(t *testing.T) {
	snapshot := []domain.Ad{
		makeAd("banana"),
		makeAd("Apple"),
		makeAd("cherry"),
	}

	query := defaultQuery()
	query.SortBy = "title"
	query.SortDir = "asc"
	page := applyQuery(snapshot, query)

	// Байтовое сравнение: заглавные буквы раньше строчных
	assert.Equal(t, []string{"Apple", "banana", "cherry"}, titles(page.Items))
}

func TestPaginationWindowAndTotal(t *testing.T) {
	snapshot := make([]domain.Ad, 0, 25)
	for i := 0; i < 25; i++ {
		snapshot = append(snapshot, makeAd("Ad",
			withCreatedAt(time.Date(2025, 1, 1, 0, 0, i, 0, time.UTC))))
	}

	query := defaultQuery()
	query.Page = 3
	query.PageSize = 10
	page := applyQuery(snapshot, query)

	assert.Equal(t, 25, page.Total)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 3, page.Page)

	// Страница за пределами коллекции - пустая, total не меняется
	query.Page = 10
	page = applyQuery(snapshot, query)
	assert.Equal(t, 25, page.Total)
	assert.Empty(t, page.Items)
}

func TestPaginationClampsInvalidValues(t *testing.T) {
	snapshot := []domain.Ad{makeAd("A"), makeAd("B")}

	query := defaultQuery()
	query.Page = -5
	query.PageSize = 0
	page := applyQuery(snapshot, query)

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.PageSize)
	assert.Len(t, page.Items, 1)

	query = defaultQuery()
	query.PageSize = 100000
	page = applyQuery(snapshot, query)
	assert.Equal(t, domain.MaxPageSize, page.PageSize)
}

func TestPaginationPagesConcatenateToWholeResult(t *testing.T) {
	snapshot := make([]domain.Ad, 0, 7)
	for i := 0; i < 7; i++ {
		snapshot = append(snapshot, makeAd("Ad",
			withCreatedAt(time.Date(2025, 1, 1, 0, 0, i, 0, time.UTC))))
	}

	var collected []uuid.UUID
	query := defaultQuery()
	query.PageSize = 3
	for pageNum := 1; pageNum <= 3; pageNum++ {
		query.Page = pageNum
		page := applyQuery(snapshot, query)
		for _, ad := range page.Items {
			collected = append(collected, ad.ID)
		}
	}

	require.Len(t, collected, 7)
	seen := make(map[uuid.UUID]bool)
	for _, id := range collected {
		assert.False(t, seen[id], "pages must not overlap")
		seen[id] = true
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Минск - Вильнюс, примерно 170 км
	d := haversineKm(53.9, 27.5667, 54.6872, 25.2797)
	assert.InDelta(t, 172, d, 5)

	assert.Equal(t, 0.0, haversineKm(10, 20, 10, 20))
}
