package filestore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ads-service/internal/core/domain"
	"ads-service/internal/filelock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*FileAdsRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ads.json")
	repo, err := NewFileAdsRepository(path, filelock.New())
	require.NoError(t, err)
	return repo, path
}

func sampleAd(title string) domain.Ad {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.Ad{
		ID:          uuid.New(),
		Title:       title,
		Description: "some description",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestNewFileAdsRepositoryValidation(t *testing.T) {
	_, err := NewFileAdsRepository("", filelock.New())
	assert.Error(t, err)

	_, err = NewFileAdsRepository("ads.json", nil)
	assert.Error(t, err)
}

func TestReadAllMissingFileReturnsEmpty(t *testing.T) {
	repo, _ := newTestRepo(t)

	ads, err := repo.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ads)
}

func TestWriteAllThenReadAllRoundtrip(t *testing.T) {
	repo, _ := newTestRepo(t)

	price := 100.50
	ad := sampleAd("Bike")
	ad.Price = &price

	require.NoError(t, repo.WriteAll(context.Background(), []domain.Ad{ad}))

	ads, err := repo.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, ad.ID, ads[0].ID)
	assert.Equal(t, "Bike", ads[0].Title)
	require.NotNil(t, ads[0].Price)
	assert.Equal(t, 100.50, *ads[0].Price)
}

func TestReadAllCorruptFileReturnsEmpty(t *testing.T) {
	repo, path := newTestRepo(t)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	ads, err := repo.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ads)
}

func TestReadAllWhitespaceFileReturnsEmpty(t *testing.T) {
	repo, path := newTestRepo(t)

	require.NoError(t, os.WriteFile(path, []byte("  \n\t "), 0o644))

	ads, err := repo.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ads)
}

func TestWriteAllLeavesNoTempOrBackupFiles(t *testing.T) {
	repo, path := newTestRepo(t)

	require.NoError(t, repo.WriteAll(context.Background(), []domain.Ad{sampleAd("First")}))
	// Вторая запись идет по ветке с .bak
	require.NoError(t, repo.WriteAll(context.Background(), []domain.Ad{sampleAd("Second")}))

	_, err := os.Stat(path)
	assert.NoError(t, err)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be cleaned up")

	_, err = os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err), "backup file should be cleaned up")
}

func TestWriteAllCreatesDataDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "ads.json")
	repo, err := NewFileAdsRepository(path, filelock.New())
	require.NoError(t, err)

	require.NoError(t, repo.WriteAll(context.Background(), []domain.Ad{sampleAd("Ad")}))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestMutateConcurrentAppendsLoseNothing(t *testing.T) {
	repo, _ := newTestRepo(t)

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			err := repo.Mutate(context.Background(), func(ads []domain.Ad) ([]domain.Ad, error) {
				return append(ads, sampleAd("Concurrent")), nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ads, err := repo.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, ads, writers)
}

func TestMutateErrorAbortsWrite(t *testing.T) {
	repo, _ := newTestRepo(t)

	require.NoError(t, repo.WriteAll(context.Background(), []domain.Ad{sampleAd("Keep me")}))

	err := repo.Mutate(context.Background(), func(ads []domain.Ad) ([]domain.Ad, error) {
		return nil, domain.ErrNotFound
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ads, err := repo.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, "Keep me", ads[0].Title)
}

func TestWriteAllStampsGeohash(t *testing.T) {
	repo, _ := newTestRepo(t)

	lat, lng := 53.9, 27.5667
	ad := sampleAd("Minsk flat")
	ad.Location = &domain.Location{Address: "Minsk", Lat: &lat, Lng: &lng}

	require.NoError(t, repo.WriteAll(context.Background(), []domain.Ad{ad}))

	ads, err := repo.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, ads, 1)
	require.NotNil(t, ads[0].Location)
	assert.Len(t, ads[0].Location.Geohash, 5)

	// Координаты убрали - ключ должен исчезнуть
	ads[0].Location.Lat = nil
	ads[0].Location.Lng = nil
	require.NoError(t, repo.WriteAll(context.Background(), ads))

	ads, err = repo.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, ads, 1)
	require.NotNil(t, ads[0].Location)
	assert.Empty(t, ads[0].Location.Geohash)
}
