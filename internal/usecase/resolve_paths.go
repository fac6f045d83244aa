package usecases

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pdfcompressor/internal/domain/entities"
	"pdfcompressor/internal/domain/repositories"
)

// ResolvePathsUseCase сценарий нормализации пользовательских путей.
// Превращает сырой список файлов и директорий в канонический список
// файлов для обработки без дубликатов. Отдельный плохой путь никогда
// не прерывает разбор остальных.
type ResolvePathsUseCase struct {
	fileRepo repositories.FileRepository
	logger   repositories.Logger
}

// NewResolvePathsUseCase создает новый сценарий разрешения путей
func NewResolvePathsUseCase(fileRepo repositories.FileRepository, logger repositories.Logger) *ResolvePathsUseCase {
	return &ResolvePathsUseCase{
		fileRepo: fileRepo,
		logger:   logger,
	}
}

// Execute разрешает сырые пути в список файлов.
// Возвращает файлы в порядке первого вхождения и список ошибок по
// недоступным путям.
func (uc *ResolvePathsUseCase) Execute(rawInputs []string, recursive bool, config *entities.CompressionConfig) ([]string, []string) {
	extensions := targetExtensions(config)

	var candidates []string
	var errs []string

	for _, raw := range rawInputs {
		input := normalizeInput(raw)
		if input == "" {
			continue
		}

		path, err := filepath.Abs(input)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", input, err))
			continue
		}

		switch {
		case uc.fileRepo.IsDirectory(path):
			files, err := uc.fileRepo.ListFiles(path, recursive, extensions)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", path, err))
				continue
			}
			candidates = append(candidates, files...)

		case uc.fileRepo.FileExists(path) && hasTargetExtension(path, extensions):
			candidates = append(candidates, path)

		case uc.fileRepo.FileExists(path):
			errs = append(errs, fmt.Sprintf("неподдерживаемое расширение файла: %s", path))

		default:
			errs = append(errs, fmt.Sprintf("путь не найден или недоступен: %s", path))
		}
	}

	return uc.deduplicate(candidates), errs
}

// deduplicate удаляет дубликаты по каноническому пути,
// сохраняя порядок первого вхождения
func (uc *ResolvePathsUseCase) deduplicate(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	unique := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		canonical, err := uc.fileRepo.CanonicalPath(candidate)
		if err != nil {
			canonical = filepath.Clean(candidate)
		}
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		unique = append(unique, canonical)
	}

	return unique
}

// normalizeInput убирает пробелы и кавычки, раскрывает домашнюю директорию
func normalizeInput(raw string) string {
	input := strings.TrimSpace(raw)
	input = strings.Trim(input, `"'`)
	input = strings.TrimSpace(input)

	if input == "~" || strings.HasPrefix(input, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			input = filepath.Join(home, strings.TrimPrefix(input, "~"))
		}
	}
	return input
}

// targetExtensions возвращает расширения для поиска согласно конфигурации
func targetExtensions(config *entities.CompressionConfig) []string {
	extensions := []string{".pdf"}
	if config == nil {
		return extensions
	}
	if config.EnableJPEG {
		extensions = append(extensions, ".jpg", ".jpeg")
	}
	if config.EnablePNG {
		extensions = append(extensions, ".png")
	}
	return extensions
}

// hasTargetExtension сравнивает расширение файла без учета регистра
func hasTargetExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	for _, candidate := range extensions {
		if strings.EqualFold(ext, candidate) {
			return true
		}
	}
	return false
}
