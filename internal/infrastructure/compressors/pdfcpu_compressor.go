package compressors

import (
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"pdfcompressor/internal/domain/entities"
)

// PDFCPUCompressor структурная оптимизация через библиотеку PDFCPU.
// Сжимает потоки объектов и удаляет дубликаты структур без перекодирования
// изображений, поэтому строго не теряет отображаемое содержимое.
type PDFCPUCompressor struct{}

// NewPDFCPUCompressor создает новый PDFCPU компрессор
func NewPDFCPUCompressor() *PDFCPUCompressor {
	return &PDFCPUCompressor{}
}

// Name возвращает имя стратегии
func (p *PDFCPUCompressor) Name() string {
	return "pdfcpu"
}

// Compress оптимизирует PDF файл используя PDFCPU библиотеку
func (p *PDFCPUCompressor) Compress(ctx context.Context, inputPath, outputPath string, config *entities.CompressionConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := api.OptimizeFile(inputPath, outputPath, nil); err != nil {
		return fmt.Errorf("ошибка оптимизации PDFCPU: %w", err)
	}
	return nil
}
