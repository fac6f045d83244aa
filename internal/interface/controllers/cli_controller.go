package controllers

import (
	"context"
	"fmt"
	"path/filepath"

	"pdfcompressor/internal/domain/entities"
	usecases "pdfcompressor/internal/usecase"
)

// CLIController консольный контроллер для запуска без TUI.
// Используется с флагом -no-tui и в скриптах.
type CLIController struct {
	batch *usecases.ProcessBatchUseCase
}

// NewCLIController создает новый консольный контроллер
func NewCLIController(batch *usecases.ProcessBatchUseCase) *CLIController {
	return &CLIController{batch: batch}
}

// Run выполняет пакетную обработку и печатает итоги в консоль
func (c *CLIController) Run(ctx context.Context, config *entities.Config) error {
	fmt.Println("🔥 PDF Folder Compressor")
	fmt.Println("════════════════════════════════════════")

	report, err := c.batch.Execute(ctx, config)
	if err != nil {
		fmt.Printf("✗ Обработка прервана: %v\n", err)
		return err
	}

	c.printReport(report)

	if report.Summary.Failed > 0 {
		return fmt.Errorf("обработано с ошибками: %d из %d файлов",
			report.Summary.Failed, report.Summary.TotalFiles)
	}
	return nil
}

// printReport печатает результаты по каждому файлу и общую статистику
func (c *CLIController) printReport(report *entities.Report) {
	fmt.Println()
	for _, result := range report.Results {
		name := filepath.Base(result.SourcePath)
		if result.Status == entities.StatusOK {
			fmt.Printf("✓ %s: %.2f MB → %.2f MB (%.1f%%)\n",
				name,
				float64(result.SizeBefore)/1024/1024,
				float64(result.SizeAfter)/1024/1024,
				result.SavedPct)
			if result.Note != "" {
				fmt.Printf("  ⚠️  %s\n", result.Note)
			}
		} else {
			fmt.Printf("✗ %s: %s\n", name, result.Note)
		}
	}

	summary := report.Summary
	fmt.Println()
	fmt.Println("════════════════════════════════════════")
	fmt.Printf("Всего файлов:     %d\n", summary.TotalFiles)
	fmt.Printf("Успешно:          %d\n", summary.Succeeded)
	fmt.Printf("Ошибок:           %d\n", summary.Failed)
	if summary.TotalSizeBefore > 0 {
		fmt.Printf("Исходный размер:  %.2f MB\n", float64(summary.TotalSizeBefore)/1024/1024)
		fmt.Printf("Сжатый размер:    %.2f MB\n", float64(summary.TotalSizeAfter)/1024/1024)
		fmt.Printf("Сэкономлено:      %.2f MB (%.1f%%)\n",
			float64(summary.TotalSavedBytes)/1024/1024,
			summary.AverageSavedPct)
	}
	fmt.Println("════════════════════════════════════════")
}
