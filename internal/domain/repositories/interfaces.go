package repositories

import (
	"context"

	"pdfcompressor/internal/domain/entities"
)

// CompressionStrategy интерфейс для бэкендов сжатия.
// Реализация читает исходный файл и записывает результат в outputPath,
// не изменяя оригинал. Контекст ограничивает время блокирующего вызова.
type CompressionStrategy interface {
	Name() string
	Compress(ctx context.Context, inputPath, outputPath string, config *entities.CompressionConfig) error
}

// OCRProcessor интерфейс пост-обработки OCR.
// Добавляет текстовый слой к уже сжатому файлу; ошибки никогда не фатальны.
type OCRProcessor interface {
	Available() bool
	AddTextLayer(ctx context.Context, path string) error
}

// FileRepository интерфейс для работы с файловой системой
type FileRepository interface {
	FileExists(path string) bool
	IsDirectory(path string) bool
	FileSize(path string) (int64, error)
	CreateDirectory(path string) error
	CopyFile(srcPath, dstPath string) error
	CanonicalPath(path string) (string, error)
	ListFiles(directory string, recursive bool, extensions []string) ([]string, error)
}

// ReportRepository интерфейс для сохранения отчетов
type ReportRepository interface {
	Save(report *entities.Report, directory string) (string, error)
}

// AppConfigRepository интерфейс для работы с конфигурацией приложения
type AppConfigRepository interface {
	Load(configPath string) (*entities.Config, error)
	Save(configPath string, config *entities.Config) error
}
