package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

// Kind тип загружаемого медиафайла профиля.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

const sniffLen = 512

// MediaStorage хранит файлы профилей на диске в каталогах по дате загрузки.
type MediaStorage struct {
	rootPath       string
	maxUploadBytes int64
	now            func() time.Time
}

// NewMediaStorage создаёт файловое хранилище.
func NewMediaStorage(rootPath string, maxUploadMB int64) (*MediaStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &MediaStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
		now:            time.Now,
	}, nil
}

// Save проверяет тип файла по сигнатуре и сохраняет его. Возвращает путь
// относительно корня хранилища вида profiles/2024/05/01/<uuid>.png.
func (s *MediaStorage) Save(ctx context.Context, kind Kind, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", apperror.Validation("не удалось прочитать файл")
	}
	head = head[:n]
	if n == 0 {
		return "", apperror.Validation("файл не может быть пустым")
	}

	ext, err := detectExtension(kind, head)
	if err != nil {
		return "", err
	}

	now := s.now()
	dir := path.Join("profiles", now.Format("2006"), now.Format("01"), now.Format("02"))
	relative := path.Join(dir, uuid.NewString()+"."+ext)

	if err := os.MkdirAll(filepath.Join(s.rootPath, filepath.FromSlash(dir)), 0o755); err != nil {
		return "", fmt.Errorf("storage: не удалось создать каталог: %w", err)
	}

	targetPath := filepath.Join(s.rootPath, filepath.FromSlash(relative))
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limited := io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limited)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return "", apperror.Validation(fmt.Sprintf("размер файла превышает лимит %d байт", s.maxUploadBytes))
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return relative, nil
}

// detectExtension определяет реальный тип по магическим байтам.
func detectExtension(kind Kind, head []byte) (string, error) {
	t, err := filetype.Match(head)
	if err != nil || t == filetype.Unknown {
		return "", apperror.Validation("не удалось определить тип файла")
	}

	switch kind {
	case KindImage:
		if !filetype.IsImage(head) {
			return "", apperror.Validation(fmt.Sprintf("ожидалось изображение, получен %s", t.MIME.Value))
		}
	case KindVideo:
		if !filetype.IsVideo(head) {
			return "", apperror.Validation(fmt.Sprintf("ожидалось видео, получен %s", t.MIME.Value))
		}
	default:
		return "", apperror.Validation("неизвестный тип медиафайла")
	}
	return t.Extension, nil
}

// Delete удаляет файл из хранилища.
func (s *MediaStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.rootPath, filepath.FromSlash(filepath.Clean("/" + relativePath)))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}
