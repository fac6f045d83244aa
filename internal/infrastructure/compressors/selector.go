package compressors

import (
	"sync"

	"pdfcompressor/internal/domain/entities"
	"pdfcompressor/internal/domain/repositories"
)

// StrategySelector выбирает стратегию сжатия PDF для всего пакета.
// Проба Ghostscript выполняется один раз за время жизни селектора и не
// повторяется для отдельных файлов: пакет никогда не смешивает стратегии.
type StrategySelector struct {
	logger repositories.Logger

	probeOnce   sync.Once
	gsAvailable bool
}

// NewStrategySelector создает новый селектор стратегий
func NewStrategySelector(logger repositories.Logger) *StrategySelector {
	return &StrategySelector{logger: logger}
}

// SelectPDFStrategy возвращает стратегию для PDF файлов.
// Предпочитается Ghostscript; при его отсутствии используется движок
// структурной оптимизации из конфигурации.
func (s *StrategySelector) SelectPDFStrategy(config *entities.CompressionConfig) repositories.CompressionStrategy {
	s.probeOnce.Do(func() {
		s.gsAvailable = NewGhostscriptCompressor().Available()
	})

	if s.gsAvailable {
		s.logDebug("Ghostscript обнаружен, используем внешний компрессор")
		return NewGhostscriptCompressor()
	}

	s.logWarning("Ghostscript не найден, переходим на структурную оптимизацию")

	if config.Algorithm == "unipdf" {
		return NewUniPDFCompressor()
	}
	return NewPDFCPUCompressor()
}

func (s *StrategySelector) logDebug(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(format, args...)
	}
}

func (s *StrategySelector) logWarning(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warning(format, args...)
	}
}
