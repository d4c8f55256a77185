package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"ads-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdsRepo - хранилище в памяти с той же семантикой Mutate,
// что и у файлового: вся мутация под одним захватом
type fakeAdsRepo struct {
	ads      []domain.Ad
	writeErr error
}

func (f *fakeAdsRepo) ReadAll(ctx context.Context) ([]domain.Ad, error) {
	snapshot := make([]domain.Ad, len(f.ads))
	copy(snapshot, f.ads)
	return snapshot, nil
}

func (f *fakeAdsRepo) WriteAll(ctx context.Context, ads []domain.Ad) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.ads = ads
	return nil
}

func (f *fakeAdsRepo) Mutate(ctx context.Context, fn func(ads []domain.Ad) ([]domain.Ad, error)) error {
	snapshot, _ := f.ReadAll(ctx)
	mutated, err := fn(snapshot)
	if err != nil {
		return err
	}
	return f.WriteAll(ctx, mutated)
}

// fakeEvents записывает опубликованные события
type fakeEvents struct {
	created []domain.Ad
	updated []domain.Ad
	deleted []uuid.UUID
	err     error
}

func (f *fakeEvents) AdCreated(ctx context.Context, ad domain.Ad) error {
	f.created = append(f.created, ad)
	return f.err
}

func (f *fakeEvents) AdUpdated(ctx context.Context, ad domain.Ad) error {
	f.updated = append(f.updated, ad)
	return f.err
}

func (f *fakeEvents) AdDeleted(ctx context.Context, adID uuid.UUID) error {
	f.deleted = append(f.deleted, adID)
	return f.err
}

func TestCreateAdAssignsIdentityAndTimestamps(t *testing.T) {
	repo := &fakeAdsRepo{}
	events := &fakeEvents{}
	uc := NewCreateAdUseCase(repo, events)

	price := 250.0
	before := time.Now().UTC()
	created, err := uc.Execute(context.Background(), domain.NewAdData{
		Title:       "Bike",
		Description: "Almost new",
		Price:       &price,
		Contact:     &domain.Contact{Name: "Ann", Phone: ptr("+375291112233")},
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.False(t, created.CreatedAt.Before(before))

	require.Len(t, repo.ads, 1)
	assert.Equal(t, created.ID, repo.ads[0].ID)

	require.Len(t, events.created, 1)
	assert.Equal(t, created.ID, events.created[0].ID)
}

func TestCreateAdPropagatesStorageError(t *testing.T) {
	repo := &fakeAdsRepo{writeErr: errors.New("disk full")}
	uc := NewCreateAdUseCase(repo, &fakeEvents{})

	_, err := uc.Execute(context.Background(), domain.NewAdData{Title: "Bike", Description: "x"})
	assert.Error(t, err)
}

func TestCreateAdSurvivesEventPublishFailure(t *testing.T) {
	repo := &fakeAdsRepo{}
	events := &fakeEvents{err: errors.New("broker down")}
	uc := NewCreateAdUseCase(repo, events)

	created, err := uc.Execute(context.Background(), domain.NewAdData{Title: "Bike", Description: "x"})
	require.NoError(t, err)
	assert.NotNil(t, created)
	assert.Len(t, repo.ads, 1)
}

func TestGetAdByIDFindsAndFails(t *testing.T) {
	existing := makeAd("Bike")
	repo := &fakeAdsRepo{ads: []domain.Ad{existing}}
	uc := NewGetAdByIDUseCase(repo)

	found, err := uc.Execute(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, found.ID)

	_, err = uc.Execute(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateAdAppliesPartialPatch(t *testing.T) {
	existing := makeAd("Old title", withPrice(100), withCategory("bikes"))
	existing.Contact = &domain.Contact{Name: "Ann", Phone: ptr("+375291112233")}
	repo := &fakeAdsRepo{ads: []domain.Ad{existing}}
	events := &fakeEvents{}
	uc := NewUpdateAdUseCase(repo, events)

	updated, err := uc.Execute(context.Background(), existing.ID, domain.AdPatch{
		Title: ptr("New title"),
		Price: ptr(150.0),
	})
	require.NoError(t, err)

	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, 150.0, *updated.Price)
	// Нетронутые поля сохраняются
	assert.Equal(t, existing.Description, updated.Description)
	assert.Equal(t, "bikes", *updated.Category)
	assert.Equal(t, "Ann", updated.Contact.Name)

	assert.True(t, updated.UpdatedAt.After(existing.UpdatedAt))
	assert.Equal(t, existing.CreatedAt, updated.CreatedAt)

	require.Len(t, events.updated, 1)
}

func TestUpdateAdContactPatchReplacesPhoneAndEmailVerbatim(t *testing.T) {
	existing := makeAd("Bike")
	existing.Contact = &domain.Contact{
		Name:  "Ann",
		Phone: ptr("+375291112233"),
		Email: ptr("ann@example.com"),
	}
	repo := &fakeAdsRepo{ads: []domain.Ad{existing}}
	uc := NewUpdateAdUseCase(repo, &fakeEvents{})

	// Патч несет только email: телефон при этом стирается,
	// имя без значения в патче остается прежним
	updated, err := uc.Execute(context.Background(), existing.ID, domain.AdPatch{
		Contact: &domain.ContactPatch{Email: ptr("new@example.com")},
	})
	require.NoError(t, err)

	assert.Equal(t, "Ann", updated.Contact.Name)
	assert.Nil(t, updated.Contact.Phone)
	require.NotNil(t, updated.Contact.Email)
	assert.Equal(t, "new@example.com", *updated.Contact.Email)
}

func TestUpdateAdLocationPatchMergesPerField(t *testing.T) {
	existing := makeAd("Bike", withCoords(53.9, 27.56))
	repo := &fakeAdsRepo{ads: []domain.Ad{existing}}
	uc := NewUpdateAdUseCase(repo, &fakeEvents{})

	updated, err := uc.Execute(context.Background(), existing.ID, domain.AdPatch{
		Location: &domain.LocationPatch{Address: ptr("New address")},
	})
	require.NoError(t, err)

	assert.Equal(t, "New address", updated.Location.Address)
	// Координаты без значения в патче не трогаются
	require.NotNil(t, updated.Location.Lat)
	assert.Equal(t, 53.9, *updated.Location.Lat)
}

func TestUpdateAdNotFound(t *testing.T) {
	repo := &fakeAdsRepo{}
	uc := NewUpdateAdUseCase(repo, &fakeEvents{})

	_, err := uc.Execute(context.Background(), uuid.New(), domain.AdPatch{Title: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteAdRemovesAndPublishes(t *testing.T) {
	first := makeAd("First")
	second := makeAd("Second")
	repo := &fakeAdsRepo{ads: []domain.Ad{first, second}}
	events := &fakeEvents{}
	uc := NewDeleteAdUseCase(repo, events)

	require.NoError(t, uc.Execute(context.Background(), first.ID))

	require.Len(t, repo.ads, 1)
	assert.Equal(t, second.ID, repo.ads[0].ID)

	require.Len(t, events.deleted, 1)
	assert.Equal(t, first.ID, events.deleted[0])
}

func TestDeleteAdNotFound(t *testing.T) {
	repo := &fakeAdsRepo{ads: []domain.Ad{makeAd("Keep")}}
	events := &fakeEvents{}
	uc := NewDeleteAdUseCase(repo, events)

	err := uc.Execute(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, repo.ads, 1)
	assert.Empty(t, events.deleted)
}
