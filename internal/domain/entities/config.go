package entities

import "runtime"

// Preset профиль качества сжатия
type Preset string

// Поддерживаемые профили сжатия
const (
	PresetLossless   Preset = "lossless"
	PresetBalanced   Preset = "balanced"
	PresetAggressive Preset = "aggressive"
	PresetCustom     Preset = "custom"
)

// WritePolicy политика записи результата
type WritePolicy string

// Поддерживаемые политики записи
const (
	// WritePolicySuffix записывает результат в выходную директорию под именем <stem>_compressed.pdf
	WritePolicySuffix WritePolicy = "suffix"
	// WritePolicyOverwrite заменяет оригинал после обязательной резервной копии
	WritePolicyOverwrite WritePolicy = "overwrite"
)

// DefaultTimeoutSeconds таймаут одного вызова внешнего инструмента по умолчанию
const DefaultTimeoutSeconds = 120

// CompressionConfig представляет конфигурацию сжатия одного пакета.
// Создается один раз на запуск и разделяется всеми заданиями только для чтения.
type CompressionConfig struct {
	Preset      Preset      // Профиль качества
	DPI         int         // Целевое разрешение изображений (72-300)
	JPEGQuality int         // Качество JPEG (30-90)
	WritePolicy WritePolicy // Политика записи результата
	UseOCR      bool        // Добавлять текстовый слой через OCR
	OutputDir   string      // Директория для результатов (политика suffix)
	BackupDir   string      // Директория резервных копий (политика overwrite)
	ReportDir   string      // Директория отчетов
	MaxWorkers  int         // Количество параллельных воркеров (>=1)

	// Таймаут одного вызова внешнего инструмента в секундах
	TimeoutSeconds int

	// Движок структурной оптимизации, когда Ghostscript недоступен
	Algorithm        string // pdfcpu | unipdf
	UniPDFLicenseKey string

	// Сжатие отдельных изображений тем же конвейером
	EnableJPEG bool
	EnablePNG  bool
}

// NewCompressionConfig создает конфигурацию сжатия на основе профиля.
// Разрешение задается таблицей профилей; dpi учитывается только для custom.
func NewCompressionConfig(preset Preset, dpi int) *CompressionConfig {
	config := &CompressionConfig{
		Preset:         preset,
		JPEGQuality:    75,
		WritePolicy:    WritePolicySuffix,
		OutputDir:      "output",
		BackupDir:      "backups",
		ReportDir:      "reports",
		MaxWorkers:     runtime.NumCPU(),
		TimeoutSeconds: DefaultTimeoutSeconds,
		Algorithm:      "pdfcpu",
	}

	switch preset {
	case PresetLossless:
		config.DPI = 300
	case PresetBalanced:
		config.DPI = 200
	case PresetAggressive:
		config.DPI = 120
	case PresetCustom:
		if dpi < 72 {
			dpi = 72
		}
		if dpi > 300 {
			dpi = 300
		}
		config.DPI = dpi
	default:
		config.Preset = PresetBalanced
		config.DPI = 200
	}

	return config
}

// Validate проверяет корректность конфигурации
func (c *CompressionConfig) Validate() error {
	switch c.Preset {
	case PresetLossless, PresetBalanced, PresetAggressive, PresetCustom:
	default:
		return ErrInvalidPreset
	}

	switch c.WritePolicy {
	case WritePolicySuffix, WritePolicyOverwrite:
	default:
		return ErrInvalidWritePolicy
	}

	if c.DPI < 72 || c.DPI > 300 {
		return ErrInvalidDPI
	}
	if c.JPEGQuality < 30 || c.JPEGQuality > 90 {
		return ErrInvalidJPEGQuality
	}
	if c.MaxWorkers < 1 {
		return ErrInvalidWorkerCount
	}
	if c.TimeoutSeconds < 1 {
		return ErrInvalidTimeout
	}
	return nil
}
