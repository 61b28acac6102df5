package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PublicPrefix - префикс, под которым файлы раздаются статикой
const PublicPrefix = "/uploads"

// FileStore хранит голосовые сообщения на диске. Content сообщения
// с is_audio ссылается на публичный путь файла.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &FileStore{dir: dir}, nil
}

// Dir возвращает каталог хранилища, он же корень статики
func (s *FileStore) Dir() string {
	return s.dir
}

// Save пишет файл и возвращает его публичный путь
func (s *FileStore) Save(filename string, src io.Reader) (string, error) {
	dst, err := os.Create(filepath.Join(s.dir, filepath.Base(filename)))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}

	return PublicPrefix + "/" + filepath.Base(filename), nil
}

// Remove удаляет файл по его публичному пути. Отсутствующий файл
// ошибкой не считается.
func (s *FileStore) Remove(publicPath string) error {
	name := filepath.Base(strings.TrimPrefix(publicPath, PublicPrefix))
	if name == "." || name == "/" {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}

	return nil
}
