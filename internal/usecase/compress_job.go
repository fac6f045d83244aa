package usecases

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"pdfcompressor/internal/domain/entities"
	"pdfcompressor/internal/domain/repositories"
)

// tempSequence процессный счетчик для уникальных имен временных файлов.
// Вместе с наносекундной меткой исключает коллизии параллельных заданий.
var tempSequence int64

// CompressJobUseCase сценарий сжатия одного файла.
// Самодостаточная единица работы: резервная копия, временный файл,
// стратегия сжатия, перенос результата. Любая ошибка превращается в
// результат со статусом ERROR и не покидает границу задания.
type CompressJobUseCase struct {
	pdfStrategy   repositories.CompressionStrategy
	imageStrategy repositories.CompressionStrategy
	ocr           repositories.OCRProcessor
	fileRepo      repositories.FileRepository
	logger        repositories.Logger
}

// NewCompressJobUseCase создает новый сценарий сжатия файла
func NewCompressJobUseCase(
	pdfStrategy repositories.CompressionStrategy,
	imageStrategy repositories.CompressionStrategy,
	ocr repositories.OCRProcessor,
	fileRepo repositories.FileRepository,
	logger repositories.Logger,
) *CompressJobUseCase {
	return &CompressJobUseCase{
		pdfStrategy:   pdfStrategy,
		imageStrategy: imageStrategy,
		ocr:           ocr,
		fileRepo:      fileRepo,
		logger:        logger,
	}
}

// Execute выполняет сжатие одного файла согласно конфигурации
func (uc *CompressJobUseCase) Execute(ctx context.Context, inputPath string, config *entities.CompressionConfig) *entities.JobResult {
	result := &entities.JobResult{
		SourcePath: inputPath,
		Status:     entities.StatusOK,
	}

	ext := filepath.Ext(inputPath)
	stem := strings.TrimSuffix(filepath.Base(inputPath), ext)

	sizeBefore, err := uc.fileRepo.FileSize(inputPath)
	if err != nil {
		return uc.fail(result, fmt.Errorf("ошибка чтения размера исходного файла: %w", err))
	}
	result.SizeBefore = sizeBefore

	outputPath := inputPath
	if config.WritePolicy == entities.WritePolicySuffix {
		outputPath = filepath.Join(config.OutputDir, stem+"_compressed"+ext)
	}

	// Резервная копия строго до любых изменений. Ошибка копии завершает
	// задание без попытки сжатия.
	if config.WritePolicy == entities.WritePolicyOverwrite {
		if err := uc.fileRepo.CreateDirectory(config.BackupDir); err != nil {
			return uc.fail(result, fmt.Errorf("ошибка создания директории резервных копий: %w", err))
		}

		backupPath := filepath.Join(config.BackupDir, fmt.Sprintf("%s_%d%s", stem, time.Now().Unix(), ext))
		if err := uc.fileRepo.CopyFile(inputPath, backupPath); err != nil {
			return uc.fail(result, fmt.Errorf("ошибка создания резервной копии: %w", err))
		}
		result.BackupPath = backupPath
	}

	// Временный файл живет в директории результата: финальное
	// переименование остается в пределах одной файловой системы
	if err := uc.fileRepo.CreateDirectory(filepath.Dir(outputPath)); err != nil {
		return uc.fail(result, fmt.Errorf("ошибка создания выходной директории: %w", err))
	}

	tmpPath := filepath.Join(filepath.Dir(outputPath), fmt.Sprintf("tmp_%s_%d_%d%s",
		stem, time.Now().UnixNano(), atomic.AddInt64(&tempSequence, 1), ext))

	// Временный файл удаляется на любом пути выхода; ошибка удаления не
	// влияет на результат задания
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			if uc.logger != nil {
				uc.logger.Debug("Не удалось удалить временный файл %s: %v", tmpPath, err)
			}
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(config.TimeoutSeconds)*time.Second)
	defer cancel()

	strategy := uc.strategyFor(inputPath)
	if strategy == nil {
		return uc.fail(result, fmt.Errorf("нет стратегии сжатия для файла %s", inputPath))
	}

	if err := strategy.Compress(runCtx, inputPath, tmpPath, config); err != nil {
		return uc.fail(result, err)
	}

	// OCR никогда не отменяет успешное сжатие: сбой только добавляет пометку
	if config.UseOCR && isPDF(inputPath) {
		if uc.ocr == nil || !uc.ocr.Available() {
			result.Note = "OCR пропущен: ocrmypdf не найден"
		} else if err := uc.ocr.AddTextLayer(runCtx, tmpPath); err != nil {
			result.Note = fmt.Sprintf("OCR пропущен: %v", err)
		}
	}

	if err := uc.moveFile(tmpPath, outputPath); err != nil {
		return uc.fail(result, fmt.Errorf("ошибка переноса результата: %w", err))
	}

	sizeAfter, err := uc.fileRepo.FileSize(outputPath)
	if err != nil {
		return uc.fail(result, fmt.Errorf("ошибка чтения размера сжатого файла: %w", err))
	}

	result.OutputPath = outputPath
	result.SizeAfter = sizeAfter
	result.Finalize()
	return result
}

// strategyFor выбирает бэкенд по типу файла
func (uc *CompressJobUseCase) strategyFor(inputPath string) repositories.CompressionStrategy {
	if isPDF(inputPath) {
		return uc.pdfStrategy
	}
	return uc.imageStrategy
}

// moveFile атомарно переносит временный файл в выходной путь.
// Выходной файл не изменяется, пока замена не готова целиком: при
// переносе между файловыми системами копия собирается в соседнем файле
// и переименовывается поверх. Ошибка удаления временного файла не
// отменяет успешный перенос, им занимается отложенная очистка.
func (uc *CompressJobUseCase) moveFile(tmpPath, outputPath string) error {
	if err := os.Rename(tmpPath, outputPath); err == nil {
		return nil
	}

	stagePath := outputPath + ".part"
	if err := uc.fileRepo.CopyFile(tmpPath, stagePath); err != nil {
		return err
	}
	if err := os.Rename(stagePath, outputPath); err != nil {
		os.Remove(stagePath)
		return err
	}

	os.Remove(tmpPath)
	return nil
}

// fail превращает ошибку в результат со статусом ERROR.
// Оригинал к этому моменту не тронут, резервная копия (если есть) сохранена.
func (uc *CompressJobUseCase) fail(result *entities.JobResult, err error) *entities.JobResult {
	result.Status = entities.StatusError
	result.Note = err.Error()
	result.OutputPath = ""
	result.SizeAfter = result.SizeBefore
	result.SavedBytes = 0
	result.SavedPct = 0
	return result
}

// isPDF проверяет расширение файла без учета регистра
func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
