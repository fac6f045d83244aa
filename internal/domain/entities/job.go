package entities

import "time"

// JobStatus статус выполнения задания
type JobStatus string

// Статусы задания
const (
	StatusOK    JobStatus = "OK"
	StatusError JobStatus = "ERROR"
)

// JobResult представляет результат сжатия одного файла.
// Создается ровно один раз заданием и после этого не изменяется.
type JobResult struct {
	SourcePath string    // Исходный файл
	OutputPath string    // Итоговый файл (пустой при ошибке)
	BackupPath string    // Резервная копия (пустой без политики overwrite)
	SizeBefore int64     // Размер до сжатия в байтах
	SizeAfter  int64     // Размер после сжатия в байтах
	SavedBytes int64     // Сэкономлено байт
	SavedPct   float64   // Сэкономлено в процентах
	Status     JobStatus // OK или ERROR
	Note       string    // Описание ошибки или пометка об OCR
}

// Finalize вычисляет экономию по текущим размерам.
// Отрицательная экономия (файл вырос) приводится к нулю.
func (r *JobResult) Finalize() {
	saved := r.SizeBefore - r.SizeAfter
	if saved < 0 {
		saved = 0
	}
	r.SavedBytes = saved

	if r.SizeBefore > 0 {
		r.SavedPct = float64(saved) / float64(r.SizeBefore) * 100
	} else {
		r.SavedPct = 0
	}
}

// IsEffective проверяет, было ли сжатие эффективным
func (r *JobResult) IsEffective() bool {
	return r.Status == StatusOK && r.SavedBytes > 0
}

// ReportSummary итоговая статистика пакета
type ReportSummary struct {
	TotalFiles      int
	Succeeded       int
	Failed          int
	TotalSizeBefore int64
	TotalSizeAfter  int64
	TotalSavedBytes int64
	AverageSavedPct float64
}

// Report представляет отчет одного запуска пакетной обработки.
// Порядок результатов соответствует порядку завершения заданий.
type Report struct {
	Results   []JobResult
	Summary   ReportSummary
	CreatedAt time.Time
}

// NewReport собирает отчет и вычисляет итоговую статистику
func NewReport(results []JobResult) *Report {
	report := &Report{
		Results:   results,
		CreatedAt: time.Now(),
	}

	summary := ReportSummary{TotalFiles: len(results)}
	for _, r := range results {
		if r.Status == StatusOK {
			summary.Succeeded++
			summary.TotalSizeBefore += r.SizeBefore
			summary.TotalSizeAfter += r.SizeAfter
			summary.TotalSavedBytes += r.SavedBytes
		} else {
			summary.Failed++
		}
	}

	if summary.TotalSizeBefore > 0 {
		summary.AverageSavedPct = float64(summary.TotalSavedBytes) / float64(summary.TotalSizeBefore) * 100
	}

	report.Summary = summary
	return report
}
