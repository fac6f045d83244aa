package usecases

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"pdfcompressor/internal/domain/entities"
	"pdfcompressor/internal/domain/repositories"
)

// ProcessBatchUseCase сценарий пакетной обработки файлов.
// Разрешает пути, раздает задания пулу воркеров, собирает результаты в
// порядке завершения и сохраняет итоговый отчет.
type ProcessBatchUseCase struct {
	resolver         *ResolvePathsUseCase
	job              *CompressJobUseCase
	fileRepo         repositories.FileRepository
	reportRepo       repositories.ReportRepository
	logger           repositories.Logger
	progressReporter func(entities.ProcessingStatus)
}

// NewProcessBatchUseCase создает новый сценарий пакетной обработки
func NewProcessBatchUseCase(
	resolver *ResolvePathsUseCase,
	job *CompressJobUseCase,
	fileRepo repositories.FileRepository,
	reportRepo repositories.ReportRepository,
	logger repositories.Logger,
) *ProcessBatchUseCase {
	return &ProcessBatchUseCase{
		resolver:   resolver,
		job:        job,
		fileRepo:   fileRepo,
		reportRepo: reportRepo,
		logger:     logger,
	}
}

// SetProgressReporter устанавливает функцию для отчета о прогрессе.
// Уведомление не влияет на планирование заданий.
func (uc *ProcessBatchUseCase) SetProgressReporter(reporter func(entities.ProcessingStatus)) {
	uc.progressReporter = reporter
}

// reportProgress отправляет обновление прогресса
func (uc *ProcessBatchUseCase) reportProgress(status *entities.ProcessingStatus) {
	if uc.progressReporter != nil {
		uc.progressReporter(*status)
	}
}

// Execute выполняет пакетную обработку согласно конфигурации приложения
func (uc *ProcessBatchUseCase) Execute(ctx context.Context, appConfig *entities.Config) (*entities.Report, error) {
	status := entities.NewProcessingStatus(0)
	status.SetPhase(entities.PhaseInitializing, "Инициализация обработки...")
	uc.reportProgress(status)

	config, err := appConfig.ToCompressionConfig()
	if err != nil {
		err = fmt.Errorf("ошибка конфигурации сжатия: %w", err)
		status.Fail(err)
		uc.reportProgress(status)
		return nil, err
	}

	uc.logInfo("╔════════════════════════════════════════════════════════════")
	uc.logInfo("║ Начало пакетной обработки")
	uc.logInfo("╠════════════════════════════════════════════════════════════")
	uc.logInfo("║ Путей на входе: %d", len(appConfig.Scanner.Paths))
	uc.logInfo("║ Профиль: %s (%d dpi)", config.Preset, config.DPI)
	uc.logInfo("║ Политика записи: %s", config.WritePolicy)
	uc.logInfo("║ Параллельных воркеров: %d", config.MaxWorkers)
	uc.logInfo("╚════════════════════════════════════════════════════════════")

	// Фаза поиска файлов
	status.SetPhase(entities.PhaseScanning, "Поиск файлов...")
	uc.reportProgress(status)
	uc.logInfo("🔍 Разрешение путей...")

	files, resolveErrors := uc.resolver.Execute(appConfig.Scanner.Paths, appConfig.Scanner.Recursive, config)
	for _, resolveError := range resolveErrors {
		uc.logWarning("⚠️  %s", resolveError)
	}

	if len(files) == 0 {
		status.Fail(entities.ErrNoFilesFound)
		uc.reportProgress(status)
		return nil, entities.ErrNoFilesFound
	}

	status.TotalFiles = len(files)
	uc.logSuccess("✓ Найдено файлов для обработки: %d", len(files))

	// Выходная директория проверяется один раз до планирования заданий
	if config.WritePolicy == entities.WritePolicySuffix {
		if err := uc.fileRepo.CreateDirectory(config.OutputDir); err != nil {
			err = fmt.Errorf("ошибка создания выходной директории: %w", err)
			status.Fail(err)
			uc.reportProgress(status)
			return nil, err
		}
	}

	// Фаза сжатия
	status.SetPhase(entities.PhaseCompressing, "Сжатие файлов...")
	uc.reportProgress(status)
	uc.logInfo("")
	uc.logInfo("🔄 Начало сжатия файлов...")
	uc.logInfo("─────────────────────────────────────────────────────────────")

	results := uc.runAll(ctx, files, config, status)

	// Фаза отчета
	status.SetPhase(entities.PhaseReporting, "Сохранение отчета...")
	uc.reportProgress(status)

	report := entities.NewReport(results)
	reportPath, err := uc.reportRepo.Save(report, config.ReportDir)
	if err != nil {
		uc.logError("Не удалось сохранить отчет: %v", err)
	} else {
		uc.logSuccess("✓ Отчет сохранен: %s", reportPath)
	}

	status.Complete()
	uc.reportProgress(status)
	uc.logSummary(report)

	return report, nil
}

// runAll раздает файлы пулу воркеров и собирает результаты в порядке
// завершения. Не более config.MaxWorkers заданий выполняются одновременно;
// упавшее задание никогда не прерывает остальные.
func (uc *ProcessBatchUseCase) runAll(
	ctx context.Context,
	files []string,
	config *entities.CompressionConfig,
	status *entities.ProcessingStatus,
) []entities.JobResult {
	jobs := make(chan string, len(files))
	results := make(chan *entities.JobResult, len(files))

	var wg sync.WaitGroup
	for w := 0; w < config.MaxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for inputFile := range jobs {
				results <- uc.job.Execute(ctx, inputFile, config)
			}
		}()
	}

	for _, file := range files {
		jobs <- file
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]entities.JobResult, 0, len(files))
	for result := range results {
		collected = append(collected, *result)
		status.SetCurrentFile(result.SourcePath, result.SizeBefore)
		status.AddResult(result)
		uc.reportProgress(status)

		fileName := filepath.Base(result.SourcePath)
		if result.Status == entities.StatusOK {
			uc.logSuccess("[%d/%d] ✓ %s", status.ProcessedFiles, status.TotalFiles, fileName)
			uc.logInfo("    └─ Размер: %.2f MB → %.2f MB",
				float64(result.SizeBefore)/1024/1024,
				float64(result.SizeAfter)/1024/1024)
			uc.logInfo("    └─ Сжатие: %.1f%% | Сэкономлено: %.2f MB",
				result.SavedPct,
				float64(result.SavedBytes)/1024/1024)
			if result.Note != "" {
				uc.logWarning("    └─ %s", result.Note)
			}
		} else {
			uc.logError("[%d/%d] ✗ %s", status.ProcessedFiles, status.TotalFiles, fileName)
			uc.logError("    └─ Ошибка: %s", result.Note)
		}
	}

	return collected
}

// logSummary логирует итоговую статистику пакета
func (uc *ProcessBatchUseCase) logSummary(report *entities.Report) {
	summary := report.Summary

	uc.logInfo("")
	uc.logInfo("╔════════════════════════════════════════════════════════════")
	uc.logInfo("║ Обработка завершена")
	uc.logInfo("╠════════════════════════════════════════════════════════════")
	uc.logInfo("║ Статистика файлов:")
	uc.logInfo("║   • Всего: %d", summary.TotalFiles)
	uc.logSuccess("║   • Успешно: %d", summary.Succeeded)

	if summary.Failed > 0 {
		uc.logError("║   • Ошибок: %d", summary.Failed)
	}

	if summary.TotalSizeBefore > 0 {
		uc.logInfo("╠════════════════════════════════════════════════════════════")
		uc.logInfo("║ Статистика сжатия:")
		uc.logInfo("║   • Исходный размер: %.2f MB", float64(summary.TotalSizeBefore)/1024/1024)
		uc.logInfo("║   • Сжатый размер: %.2f MB", float64(summary.TotalSizeAfter)/1024/1024)
		uc.logSuccess("║   • Среднее сжатие: %.1f%%", summary.AverageSavedPct)
		uc.logSuccess("║   • Сэкономлено: %.2f MB", float64(summary.TotalSavedBytes)/1024/1024)
	}

	uc.logInfo("╚════════════════════════════════════════════════════════════")
}

// Методы для логирования
func (uc *ProcessBatchUseCase) logInfo(format string, args ...interface{}) {
	if uc.logger != nil {
		uc.logger.Info(format, args...)
	}
}

func (uc *ProcessBatchUseCase) logSuccess(format string, args ...interface{}) {
	if uc.logger != nil {
		uc.logger.Success(format, args...)
	}
}

func (uc *ProcessBatchUseCase) logWarning(format string, args ...interface{}) {
	if uc.logger != nil {
		uc.logger.Warning(format, args...)
	}
}

func (uc *ProcessBatchUseCase) logError(format string, args ...interface{}) {
	if uc.logger != nil {
		uc.logger.Error(format, args...)
	}
}
