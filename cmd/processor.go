package main

import (
	"context"
	"sync"

	"pdfcompressor/internal/domain/entities"
	"pdfcompressor/internal/domain/repositories"
	"pdfcompressor/internal/infrastructure/compressors"
	infraRepos "pdfcompressor/internal/infrastructure/repositories"
	"pdfcompressor/internal/presentation/tui"
	usecases "pdfcompressor/internal/usecase"
)

// ApplicationProcessor связывает TUI с пакетной обработкой.
// Каждый запуск собирает свежий конвейер по текущей конфигурации формы.
type ApplicationProcessor struct {
	tuiManager *tui.Manager
	fileLogger repositories.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewApplicationProcessor создает новый процессор приложения
func NewApplicationProcessor(tuiManager *tui.Manager, fileLogger repositories.Logger) *ApplicationProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &ApplicationProcessor{
		tuiManager: tuiManager,
		fileLogger: fileLogger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// StartProcessing запускает пакетную обработку в фоновой горутине
func (p *ApplicationProcessor) StartProcessing() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runBatch()
	}()
}

// runBatch выполняет один запуск обработки
func (p *ApplicationProcessor) runBatch() {
	appConfig := p.tuiManager.GetConfig()
	logger := tui.NewUILogger(p.fileLogger, p.tuiManager)

	batch, err := buildBatchUseCase(appConfig, logger)
	if err != nil {
		logger.Error("Ошибка конфигурации: %v", err)
		status := entities.NewProcessingStatus(0)
		status.Fail(err)
		p.tuiManager.SendStatusUpdate(*status)
		return
	}

	batch.SetProgressReporter(func(status entities.ProcessingStatus) {
		p.tuiManager.SendStatusUpdate(status)
	})

	report, err := batch.Execute(p.ctx, appConfig)
	if err != nil {
		logger.Error("Обработка завершена с ошибкой: %v", err)
		return
	}

	p.tuiManager.ShowReport(report)
}

// Shutdown останавливает обработку и дожидается завершения горутин
func (p *ApplicationProcessor) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

// buildBatchUseCase собирает конвейер обработки по конфигурации приложения
func buildBatchUseCase(appConfig *entities.Config, logger repositories.Logger) (*usecases.ProcessBatchUseCase, error) {
	compressionConfig, err := appConfig.ToCompressionConfig()
	if err != nil {
		return nil, err
	}

	fileRepo := infraRepos.NewFileSystemRepository()
	reportRepo := infraRepos.NewCSVReportRepository()

	selector := compressors.NewStrategySelector(logger)
	pdfStrategy := selector.SelectPDFStrategy(compressionConfig)
	imageStrategy := compressors.NewImageCompressor()
	ocr := compressors.NewOCRPostProcessor()

	resolver := usecases.NewResolvePathsUseCase(fileRepo, logger)
	job := usecases.NewCompressJobUseCase(pdfStrategy, imageStrategy, ocr, fileRepo, logger)

	return usecases.NewProcessBatchUseCase(resolver, job, fileRepo, reportRepo, logger), nil
}
