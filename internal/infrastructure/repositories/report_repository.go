package repositories

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"pdfcompressor/internal/domain/entities"
)

// CSVReportRepository сохраняет отчеты пакетной обработки в CSV
type CSVReportRepository struct{}

// NewCSVReportRepository создает новый репозиторий отчетов
func NewCSVReportRepository() *CSVReportRepository {
	return &CSVReportRepository{}
}

// Save записывает отчет в файл report_<unixTimestamp>.csv.
// Размеры сохраняются сырыми байтами, по одной строке на результат.
func (r *CSVReportRepository) Save(report *entities.Report, directory string) (string, error) {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return "", fmt.Errorf("не удалось создать директорию отчетов: %w", err)
	}

	reportPath := filepath.Join(directory, fmt.Sprintf("report_%d.csv", report.CreatedAt.Unix()))
	file, err := os.Create(reportPath)
	if err != nil {
		return "", fmt.Errorf("не удалось создать файл отчета: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{"file", "output", "before", "after", "saved_bytes", "saved_pct", "status", "note", "backup"}
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("не удалось записать заголовок отчета: %w", err)
	}

	for _, result := range report.Results {
		row := []string{
			result.SourcePath,
			result.OutputPath,
			strconv.FormatInt(result.SizeBefore, 10),
			strconv.FormatInt(result.SizeAfter, 10),
			strconv.FormatInt(result.SavedBytes, 10),
			strconv.FormatFloat(result.SavedPct, 'f', 1, 64),
			string(result.Status),
			result.Note,
			result.BackupPath,
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("не удалось записать строку отчета: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("не удалось сохранить отчет: %w", err)
	}
	return reportPath, nil
}
