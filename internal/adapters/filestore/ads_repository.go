package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ads-service/internal/contextkeys"
	"ads-service/internal/core/domain"
	"ads-service/internal/core/port"
	"ads-service/internal/filelock"
)

// FileAdsRepository хранит всю коллекцию объявлений в одном JSON-файле.
// Модель консистентности: last-writer-wins на уровне целого документа.
// Это осознанный компромисс для маленькой коллекции, а не дефект -
// не "чинить" его переходом на по-записные блокировки.
type FileAdsRepository struct {
	path string
	lock *filelock.PathLock
}

func NewFileAdsRepository(path string, lock *filelock.PathLock) (*FileAdsRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("filestore: ads file path cannot be empty")
	}
	if lock == nil {
		return nil, fmt.Errorf("filestore: path lock cannot be nil")
	}
	return &FileAdsRepository{path: path, lock: lock}, nil
}

// ReadAll возвращает снимок коллекции. Отсутствующий, пустой или
// поврежденный файл деградирует до пустой коллекции: чтение никогда
// не мешает клиенту начать писать заново.
func (r *FileAdsRepository) ReadAll(ctx context.Context) ([]domain.Ad, error) {
	r.lock.Acquire(r.path)
	defer r.lock.Release(r.path)

	return r.readAllLocked(ctx), nil
}

// WriteAll атомарно заменяет коллекцию. Ошибки записи пробрасываются.
func (r *FileAdsRepository) WriteAll(ctx context.Context, ads []domain.Ad) error {
	r.lock.Acquire(r.path)
	defer r.lock.Release(r.path)

	return r.writeAllLocked(ads)
}

// Mutate держит блокировку на протяжении всей последовательности
// read-modify-write. Именно через него обязаны идти все мутации:
// отдельные ReadAll+WriteAll дают двум писателям один и тот же снимок.
func (r *FileAdsRepository) Mutate(ctx context.Context, fn func(ads []domain.Ad) ([]domain.Ad, error)) error {
	r.lock.Acquire(r.path)
	defer r.lock.Release(r.path)

	ads := r.readAllLocked(ctx)
	mutated, err := fn(ads)
	if err != nil {
		return err
	}
	return r.writeAllLocked(mutated)
}

func (r *FileAdsRepository) readAllLocked(ctx context.Context) []domain.Ad {
	content, err := os.ReadFile(r.path)
	if err != nil {
		// Файла еще нет - значит, ничего не сохранено
		return []domain.Ad{}
	}
	if strings.TrimSpace(string(content)) == "" {
		return []domain.Ad{}
	}

	var ads []domain.Ad
	if err := json.Unmarshal(content, &ads); err != nil {
		// Поврежденный файл трактуем как пустую коллекцию, наружу
		// ошибку не отдаем. Логируем, чтобы порча не прошла незамеченной.
		logger := contextkeys.LoggerFromContext(ctx)
		logger.Warn("Ads file is corrupted, treating as empty", port.Fields{
			"path":  r.path,
			"error": err.Error(),
		})
		return []domain.Ad{}
	}
	if ads == nil {
		return []domain.Ad{}
	}
	return ads
}

// writeAllLocked - протокол безопасной замены: пишем во временный файл,
// старую версию отводим в .bak, переименовываем временный на место,
// затем убираем .bak. Падение посреди оставляет либо старый файл,
// либо новый, либо восстановимый .bak - но никогда полузаписанный.
func (r *FileAdsRepository) writeAllLocked(ads []domain.Ad) error {
	dir := filepath.Dir(r.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("filestore: failed to create data directory %s: %w", dir, err)
		}
	}

	stampGeohashes(ads)

	content, err := json.MarshalIndent(ads, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: failed to serialize ads: %w", err)
	}

	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o644); err != nil {
		return fmt.Errorf("filestore: failed to write temp file: %w", err)
	}

	if _, err := os.Stat(r.path); err == nil {
		bakPath := r.path + ".bak"
		if err := os.Rename(r.path, bakPath); err != nil {
			return fmt.Errorf("filestore: failed to back up current file: %w", err)
		}
		if err := os.Rename(tmpPath, r.path); err != nil {
			// Пробуем вернуть старую версию на место
			_ = os.Rename(bakPath, r.path)
			return fmt.Errorf("filestore: failed to replace ads file: %w", err)
		}
		if err := os.Remove(bakPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("filestore: failed to remove backup file: %w", err)
		}
		return nil
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("filestore: failed to move temp file into place: %w", err)
	}
	return nil
}
