package compressors

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"pdfcompressor/internal/domain/entities"
)

// GhostscriptCompressor реализация компрессора через внешний Ghostscript
type GhostscriptCompressor struct {
	binary string
}

// NewGhostscriptCompressor создает новый Ghostscript компрессор
func NewGhostscriptCompressor() *GhostscriptCompressor {
	return &GhostscriptCompressor{binary: ghostscriptBinary()}
}

// ghostscriptBinary возвращает имя бинарника Ghostscript для текущей платформы
func ghostscriptBinary() string {
	if runtime.GOOS == "windows" {
		return "gswin64c"
	}
	return "gs"
}

// Name возвращает имя стратегии
func (g *GhostscriptCompressor) Name() string {
	return "ghostscript"
}

// Available проверяет доступность Ghostscript легким вызовом версии.
// Вызывается один раз на запуск, не на каждый файл.
func (g *GhostscriptCompressor) Available() bool {
	return exec.Command(g.binary, "-v").Run() == nil
}

// Compress переписывает PDF через устройство pdfwrite.
// Ненулевой код выхода считается жесткой ошибкой для данного файла.
func (g *GhostscriptCompressor) Compress(ctx context.Context, inputPath, outputPath string, config *entities.CompressionConfig) error {
	args := ghostscriptArgs(inputPath, outputPath, config)

	cmd := exec.CommandContext(ctx, g.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("ghostscript: превышен таймаут обработки файла")
		}
		return fmt.Errorf("ошибка ghostscript: %w: %s", err, strings.TrimSpace(string(output)))
	}

	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		return fmt.Errorf("ghostscript не создал выходной файл")
	}
	return nil
}

// ghostscriptArgs строит аргументы вызова по профилю сжатия.
// Дедупликация изображений включена всегда; именованные профили получают
// соответствующий PDFSETTINGS, custom задает только разрешение.
func ghostscriptArgs(inputPath, outputPath string, config *entities.CompressionConfig) []string {
	args := []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.5",
		"-dDetectDuplicateImages=true",
	}

	switch config.Preset {
	case entities.PresetLossless:
		args = append(args, "-dPDFSETTINGS=/default")
	case entities.PresetBalanced:
		args = append(args, "-dPDFSETTINGS=/printer")
	case entities.PresetAggressive:
		args = append(args, "-dPDFSETTINGS=/screen")
	}

	args = append(args,
		fmt.Sprintf("-dColorImageResolution=%d", config.DPI),
		fmt.Sprintf("-dGrayImageResolution=%d", config.DPI),
		fmt.Sprintf("-dJPEGQ=%d", config.JPEGQuality),
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile="+outputPath,
		inputPath,
	)

	return args
}
