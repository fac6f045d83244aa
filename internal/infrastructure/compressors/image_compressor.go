package compressors

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"

	"pdfcompressor/internal/domain/entities"
)

// ImageCompressor сжатие отдельных JPEG и PNG файлов.
// Работает той же сигнатурой стратегии, что и PDF бэкенды, поэтому
// изображения проходят через общий конвейер заданий.
type ImageCompressor struct{}

// NewImageCompressor создает новый компрессор изображений
func NewImageCompressor() *ImageCompressor {
	return &ImageCompressor{}
}

// Name возвращает имя стратегии
func (c *ImageCompressor) Name() string {
	return "image"
}

// IsImageFile проверяет, является ли файл поддерживаемым изображением
func IsImageFile(path string) bool {
	return GetImageFormat(path) != ""
}

// GetImageFormat определяет формат изображения по расширению
func GetImageFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	default:
		return ""
	}
}

// Compress сжимает изображение в выходной файл
func (c *ImageCompressor) Compress(ctx context.Context, inputPath, outputPath string, config *entities.CompressionConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch GetImageFormat(inputPath) {
	case "jpeg":
		return c.compressJPEG(inputPath, outputPath, config.JPEGQuality)
	case "png":
		return c.compressPNG(inputPath, outputPath, config.JPEGQuality)
	default:
		return fmt.Errorf("неподдерживаемый формат изображения: %s", inputPath)
	}
}

// compressJPEG перекодирует JPEG с уменьшением размера при низком качестве
func (c *ImageCompressor) compressJPEG(inputPath, outputPath string, quality int) error {
	inputFile, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("не удалось открыть файл %s: %w", inputPath, err)
	}
	defer inputFile.Close()

	img, err := jpeg.Decode(inputFile)
	if err != nil {
		return fmt.Errorf("не удалось декодировать JPEG файл %s: %w", inputPath, err)
	}

	inputInfo, err := inputFile.Stat()
	if err != nil {
		return fmt.Errorf("не удалось получить информацию о файле %s: %w", inputPath, err)
	}

	if err := encodeJPEG(scaleImage(img, quality), outputPath+".tmp", quality); err != nil {
		return err
	}
	return keepSmaller(inputFile, inputInfo.Size(), outputPath+".tmp", outputPath)
}

// compressPNG перекодирует PNG с максимальным сжатием потока
func (c *ImageCompressor) compressPNG(inputPath, outputPath string, quality int) error {
	inputFile, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("не удалось открыть файл %s: %w", inputPath, err)
	}
	defer inputFile.Close()

	img, err := png.Decode(inputFile)
	if err != nil {
		return fmt.Errorf("не удалось декодировать PNG файл %s: %w", inputPath, err)
	}

	inputInfo, err := inputFile.Stat()
	if err != nil {
		return fmt.Errorf("не удалось получить информацию о файле %s: %w", inputPath, err)
	}

	tmpPath := outputPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("не удалось создать временный файл: %w", err)
	}

	encoder := &png.Encoder{CompressionLevel: png.BestCompression}
	err = encoder.Encode(tmpFile, scaleImage(img, quality))
	tmpFile.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("не удалось закодировать PNG: %w", err)
	}

	return keepSmaller(inputFile, inputInfo.Size(), tmpPath, outputPath)
}

// scaleImage уменьшает изображение пропорционально качеству.
// Качество 30 дает масштаб 0.5, качество 90 оставляет исходный размер.
func scaleImage(img image.Image, quality int) image.Image {
	scaleFactor := 0.5 + float64(quality-30)/60.0*0.5
	if scaleFactor >= 1.0 {
		return img
	}

	bounds := img.Bounds()
	newWidth := uint(float64(bounds.Dx()) * scaleFactor)
	newHeight := uint(float64(bounds.Dy()) * scaleFactor)
	if newWidth == 0 || newHeight == 0 {
		return img
	}

	return resize.Resize(newWidth, newHeight, img, resize.Lanczos3)
}

// encodeJPEG кодирует изображение во временный файл
func encodeJPEG(img image.Image, tmpPath string, quality int) error {
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("не удалось создать временный файл: %w", err)
	}

	err = jpeg.Encode(tmpFile, img, &jpeg.Options{Quality: quality})
	tmpFile.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("не удалось закодировать JPEG: %w", err)
	}
	return nil
}

// keepSmaller оставляет перекодированный файл только если он заметно меньше,
// иначе копирует оригинал без изменений
func keepSmaller(original *os.File, originalSize int64, tmpPath, outputPath string) error {
	tmpInfo, err := os.Stat(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("не удалось получить информацию о временном файле: %w", err)
	}

	if tmpInfo.Size() >= originalSize*95/100 {
		os.Remove(tmpPath)

		if _, err := original.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("не удалось перечитать оригинал: %w", err)
		}
		outputFile, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("не удалось создать выходной файл: %w", err)
		}
		defer outputFile.Close()

		if _, err := io.Copy(outputFile, original); err != nil {
			return fmt.Errorf("не удалось скопировать файл: %w", err)
		}
		return nil
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("не удалось переименовать временный файл: %w", err)
	}
	return nil
}
