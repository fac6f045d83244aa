package repositories

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSystemRepository реализация репозитория для работы с файловой системой
type FileSystemRepository struct{}

// NewFileSystemRepository создает новый репозиторий файловой системы
func NewFileSystemRepository() *FileSystemRepository {
	return &FileSystemRepository{}
}

// FileExists проверяет существование файла
func (r *FileSystemRepository) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDirectory проверяет, является ли путь директорией
func (r *FileSystemRepository) IsDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileSize возвращает текущий размер файла в байтах
func (r *FileSystemRepository) FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// CreateDirectory создает директорию
func (r *FileSystemRepository) CreateDirectory(path string) error {
	return os.MkdirAll(path, 0755)
}

// CopyFile копирует файл байт в байт
func (r *FileSystemRepository) CopyFile(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("не удалось открыть исходный файл: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("не удалось создать копию: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return fmt.Errorf("не удалось скопировать файл: %w", err)
	}
	return dst.Close()
}

// CanonicalPath приводит путь к каноническому абсолютному виду.
// Символические ссылки разрешаются, когда путь существует.
func (r *FileSystemRepository) CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Путь может еще не существовать; достаточно абсолютной формы
		return filepath.Clean(abs), nil
	}
	return resolved, nil
}

// ListFiles возвращает файлы с подходящим расширением в директории.
// При recursive обходится все поддерево, иначе только прямые дочерние файлы.
func (r *FileSystemRepository) ListFiles(directory string, recursive bool, extensions []string) ([]string, error) {
	var found []string

	if recursive {
		err := filepath.WalkDir(directory, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if matchesExtension(d.Name(), extensions) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return found, nil
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if matchesExtension(entry.Name(), extensions) {
			found = append(found, filepath.Join(directory, entry.Name()))
		}
	}
	return found, nil
}

// matchesExtension сравнивает расширение файла без учета регистра
func matchesExtension(name string, extensions []string) bool {
	ext := filepath.Ext(name)
	for _, candidate := range extensions {
		if strings.EqualFold(ext, candidate) {
			return true
		}
	}
	return false
}
