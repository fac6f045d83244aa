package compressors

import (
	"context"
	"fmt"
	"os"

	"github.com/unidoc/unipdf/v3/model"
	"github.com/unidoc/unipdf/v3/model/optimize"

	"pdfcompressor/internal/domain/entities"
)

// UniPDFCompressor реализация компрессора с использованием UniPDF.
// Требует лицензионный ключ; используется как движок структурной
// оптимизации только при явном выборе в конфигурации.
type UniPDFCompressor struct{}

// NewUniPDFCompressor создает новый UniPDF компрессор
func NewUniPDFCompressor() *UniPDFCompressor {
	return &UniPDFCompressor{}
}

// Name возвращает имя стратегии
func (u *UniPDFCompressor) Name() string {
	return "unipdf"
}

// Compress сжимает PDF файл используя UniPDF библиотеку
func (u *UniPDFCompressor) Compress(ctx context.Context, inputPath, outputPath string, config *entities.CompressionConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	licenseKey := config.UniPDFLicenseKey
	if licenseKey == "" {
		licenseKey = os.Getenv("UNIDOC_LICENSE_API_KEY")
	}
	if licenseKey == "" {
		return entities.ErrLicenseRequired
	}
	os.Setenv("UNIDOC_LICENSE_API_KEY", licenseKey)

	pdfReader, file, err := model.NewPdfReaderFromFile(inputPath, nil)
	if err != nil {
		return fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	pdfWriter := model.NewPdfWriter()
	pdfWriter.SetOptimizer(optimize.New(optimize.Options{
		CombineDuplicateDirectObjects:   true,
		CombineIdenticalIndirectObjects: true,
		CompressStreams:                 true,
		ImageUpperPPI:                   float64(config.DPI),
		ImageQuality:                    config.JPEGQuality,
	}))

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return fmt.Errorf("ошибка получения количества страниц: %w", err)
	}

	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return fmt.Errorf("ошибка получения страницы %d: %w", i, err)
		}
		if err := pdfWriter.AddPage(page); err != nil {
			return fmt.Errorf("ошибка добавления страницы %d: %w", i, err)
		}
	}

	outputFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("ошибка создания выходного файла: %w", err)
	}
	defer outputFile.Close()

	if err := pdfWriter.Write(outputFile); err != nil {
		return fmt.Errorf("ошибка записи файла: %w", err)
	}
	return nil
}
