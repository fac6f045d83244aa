package compressors

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// OCRPostProcessor добавляет текстовый слой через внешний ocrmypdf.
// Страницы с уже существующим текстом пропускаются.
type OCRPostProcessor struct {
	binary    string
	probeOnce sync.Once
	available bool
}

// NewOCRPostProcessor создает новый OCR пост-процессор
func NewOCRPostProcessor() *OCRPostProcessor {
	return &OCRPostProcessor{binary: "ocrmypdf"}
}

// Available проверяет доступность ocrmypdf. Проба выполняется один раз.
func (o *OCRPostProcessor) Available() bool {
	o.probeOnce.Do(func() {
		o.available = exec.Command(o.binary, "--version").Run() == nil
	})
	return o.available
}

// AddTextLayer накладывает текстовый слой на уже сжатый файл.
// Результат пишется во временный файл и заменяет оригинал только при успехе.
func (o *OCRPostProcessor) AddTextLayer(ctx context.Context, path string) error {
	if !o.Available() {
		return fmt.Errorf("ocrmypdf не найден")
	}

	ocrPath := path + ".ocr.pdf"
	cmd := exec.CommandContext(ctx, o.binary, "--skip-text", path, ocrPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(ocrPath)
		return fmt.Errorf("ошибка ocrmypdf: %w: %s", err, strings.TrimSpace(string(output)))
	}

	if err := os.Rename(ocrPath, path); err != nil {
		os.Remove(ocrPath)
		return fmt.Errorf("ошибка замены файла после OCR: %w", err)
	}
	return nil
}
