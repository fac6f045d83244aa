package entities

import (
	"runtime"
	"time"
)

// Config представляет конфигурацию приложения
type Config struct {
	Scanner     ScannerConfig        `yaml:"scanner"`
	Compression AppCompressionConfig `yaml:"compression"`
	Processing  ProcessingConfig     `yaml:"processing"`
	Output      OutputConfig         `yaml:"output"`
}

// ScannerConfig настройки поиска файлов
type ScannerConfig struct {
	Paths           []string `yaml:"paths"`            // Файлы и директории для обработки
	Recursive       bool     `yaml:"recursive"`        // Обходить поддиректории
	OutputDirectory string   `yaml:"output_directory"` // Директория результатов
	WritePolicy     string   `yaml:"write_policy"`     // suffix | overwrite
}

// AppCompressionConfig настройки сжатия приложения
type AppCompressionConfig struct {
	Preset           string `yaml:"preset"`     // lossless | balanced | aggressive | custom
	CustomDPI        int    `yaml:"custom_dpi"` // Разрешение для профиля custom (72-300)
	JPEGQuality      int    `yaml:"jpeg_quality"`
	Algorithm        string `yaml:"algorithm"` // Движок без Ghostscript: pdfcpu | unipdf
	UseOCR           bool   `yaml:"use_ocr"`
	AutoStart        bool   `yaml:"auto_start"`
	UniPDFLicenseKey string `yaml:"unipdf_license_key"`
	// Сжатие отдельных изображений
	EnableJPEG bool `yaml:"enable_jpeg"`
	EnablePNG  bool `yaml:"enable_png"`
}

// ProcessingConfig настройки обработки
type ProcessingConfig struct {
	ParallelWorkers int `yaml:"parallel_workers"`
	TimeoutSeconds  int `yaml:"timeout_seconds"`
}

// OutputConfig настройки вывода
type OutputConfig struct {
	LogLevel        string `yaml:"log_level"`
	LogToFile       bool   `yaml:"log_to_file"`
	LogFileName     string `yaml:"log_file_name"`
	LogMaxSizeMB    int    `yaml:"log_max_size_mb"`
	BackupDirectory string `yaml:"backup_directory"`
	ReportDirectory string `yaml:"report_directory"`
}

// ToCompressionConfig строит конфигурацию пакета из конфигурации приложения
func (c *Config) ToCompressionConfig() (*CompressionConfig, error) {
	config := NewCompressionConfig(Preset(c.Compression.Preset), c.Compression.CustomDPI)

	if c.Compression.JPEGQuality > 0 {
		config.JPEGQuality = c.Compression.JPEGQuality
	}
	if c.Scanner.WritePolicy != "" {
		config.WritePolicy = WritePolicy(c.Scanner.WritePolicy)
	}
	if c.Scanner.OutputDirectory != "" {
		config.OutputDir = c.Scanner.OutputDirectory
	}
	if c.Output.BackupDirectory != "" {
		config.BackupDir = c.Output.BackupDirectory
	}
	if c.Output.ReportDirectory != "" {
		config.ReportDir = c.Output.ReportDirectory
	}
	if c.Processing.ParallelWorkers > 0 {
		config.MaxWorkers = c.Processing.ParallelWorkers
	} else {
		config.MaxWorkers = runtime.NumCPU()
	}
	if c.Processing.TimeoutSeconds > 0 {
		config.TimeoutSeconds = c.Processing.TimeoutSeconds
	}
	if c.Compression.Algorithm != "" {
		config.Algorithm = c.Compression.Algorithm
	}

	config.UseOCR = c.Compression.UseOCR
	config.UniPDFLicenseKey = c.Compression.UniPDFLicenseKey
	config.EnableJPEG = c.Compression.EnableJPEG
	config.EnablePNG = c.Compression.EnablePNG

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ProcessingStatus статус обработки пакета
type ProcessingStatus struct {
	// Текущая фаза обработки
	Phase ProcessingPhase

	// Информация о текущем файле
	CurrentFile     string
	CurrentFileSize int64

	// Общая статистика
	TotalFiles      int
	ProcessedFiles  int
	SuccessfulFiles int
	FailedFiles     int

	// Прогресс
	Progress float64

	// Статистика сжатия
	TotalOriginalSize   int64
	TotalCompressedSize int64
	TotalSavedSpace     int64
	AverageCompression  float64

	// Последний результат
	LastResult *JobResult

	// Время выполнения
	StartTime     time.Time
	ElapsedTime   time.Duration
	EstimatedTime time.Duration

	// Состояние
	IsComplete bool
	Error      error

	// Сообщение для UI
	Message string
}

// ProcessingPhase фаза обработки
type ProcessingPhase int

const (
	PhaseInitializing ProcessingPhase = iota
	PhaseScanning
	PhaseCompressing
	PhaseReporting
	PhaseCompleted
	PhaseFailed
)

// UIScreen типы экранов UI
type UIScreen int

const (
	UIScreenMenu UIScreen = iota
	UIScreenConfig
	UIScreenProcessing
	UIScreenResults
)

// NewProcessingStatus создает новый статус обработки
func NewProcessingStatus(totalFiles int) *ProcessingStatus {
	return &ProcessingStatus{
		Phase:      PhaseInitializing,
		TotalFiles: totalFiles,
		StartTime:  time.Now(),
	}
}

// UpdateProgress обновляет прогресс обработки
func (ps *ProcessingStatus) UpdateProgress() {
	if ps.TotalFiles > 0 {
		ps.Progress = float64(ps.ProcessedFiles) / float64(ps.TotalFiles) * 100
	}

	ps.ElapsedTime = time.Since(ps.StartTime)

	// Оценка оставшегося времени
	if ps.ProcessedFiles > 0 && ps.ProcessedFiles < ps.TotalFiles {
		avgTimePerFile := ps.ElapsedTime / time.Duration(ps.ProcessedFiles)
		remainingFiles := ps.TotalFiles - ps.ProcessedFiles
		ps.EstimatedTime = avgTimePerFile * time.Duration(remainingFiles)
	}
}

// AddResult добавляет результат обработки файла
func (ps *ProcessingStatus) AddResult(result *JobResult) {
	ps.ProcessedFiles++
	ps.LastResult = result

	if result.Status == StatusOK {
		ps.SuccessfulFiles++
		ps.TotalOriginalSize += result.SizeBefore
		ps.TotalCompressedSize += result.SizeAfter
		ps.TotalSavedSpace += result.SavedBytes

		if ps.TotalOriginalSize > 0 {
			ps.AverageCompression = float64(ps.TotalSavedSpace) / float64(ps.TotalOriginalSize) * 100
		}
	} else {
		ps.FailedFiles++
	}

	ps.UpdateProgress()
}

// SetPhase устанавливает фазу обработки
func (ps *ProcessingStatus) SetPhase(phase ProcessingPhase, message string) {
	ps.Phase = phase
	ps.Message = message
}

// SetCurrentFile устанавливает текущий обрабатываемый файл
func (ps *ProcessingStatus) SetCurrentFile(filePath string, size int64) {
	ps.CurrentFile = filePath
	ps.CurrentFileSize = size
}

// Complete завершает обработку
func (ps *ProcessingStatus) Complete() {
	ps.IsComplete = true
	ps.Phase = PhaseCompleted
	ps.Progress = 100
	ps.ElapsedTime = time.Since(ps.StartTime)
	ps.EstimatedTime = 0
}

// Fail отмечает обработку как неудачную
func (ps *ProcessingStatus) Fail(err error) {
	ps.IsComplete = true
	ps.Phase = PhaseFailed
	ps.Error = err
	ps.ElapsedTime = time.Since(ps.StartTime)
}

// String возвращает название фазы
func (phase ProcessingPhase) String() string {
	switch phase {
	case PhaseInitializing:
		return "Инициализация"
	case PhaseScanning:
		return "Поиск файлов"
	case PhaseCompressing:
		return "Сжатие файлов"
	case PhaseReporting:
		return "Сохранение отчета"
	case PhaseCompleted:
		return "Завершено"
	case PhaseFailed:
		return "Ошибка"
	default:
		return "Неизвестно"
	}
}

// FormatElapsedTime форматирует время выполнения
func (ps *ProcessingStatus) FormatElapsedTime() string {
	if ps.ElapsedTime < time.Second {
		return "< 1 сек"
	}
	return ps.ElapsedTime.Round(time.Second).String()
}

// FormatEstimatedTime форматирует оставшееся время
func (ps *ProcessingStatus) FormatEstimatedTime() string {
	if ps.EstimatedTime == 0 {
		return "N/A"
	}
	if ps.EstimatedTime < time.Second {
		return "< 1 сек"
	}
	return ps.EstimatedTime.Round(time.Second).String()
}
