package usecases_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"pdfcompressor/internal/domain/entities"
	infraRepos "pdfcompressor/internal/infrastructure/repositories"
	usecases "pdfcompressor/internal/usecase"
)

func newBatch(strategy *fakeStrategy) *usecases.ProcessBatchUseCase {
	fileRepo := infraRepos.NewFileSystemRepository()
	resolver := usecases.NewResolvePathsUseCase(fileRepo, nil)
	job := usecases.NewCompressJobUseCase(strategy, strategy, nil, fileRepo, nil)
	return usecases.NewProcessBatchUseCase(resolver, job, fileRepo, infraRepos.NewCSVReportRepository(), nil)
}

func newBatchConfig(t *testing.T, inputDir string, workers int) *entities.Config {
	t.Helper()
	return &entities.Config{
		Scanner: entities.ScannerConfig{
			Paths:           []string{inputDir},
			Recursive:       true,
			OutputDirectory: filepath.Join(t.TempDir(), "output"),
			WritePolicy:     string(entities.WritePolicySuffix),
		},
		Compression: entities.AppCompressionConfig{
			Preset: string(entities.PresetBalanced),
		},
		Processing: entities.ProcessingConfig{
			ParallelWorkers: workers,
			TimeoutSeconds:  entities.DefaultTimeoutSeconds,
		},
		Output: entities.OutputConfig{
			BackupDirectory: filepath.Join(t.TempDir(), "backups"),
			ReportDirectory: filepath.Join(t.TempDir(), "reports"),
		},
	}
}

func TestProcessBatchUseCase_AllFilesProcessed(t *testing.T) {
	inputDir := t.TempDir()
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf"} {
		writeFile(t, filepath.Join(inputDir, name), []byte("original content"))
	}

	strategy := &fakeStrategy{output: []byte("small")}
	appConfig := newBatchConfig(t, inputDir, 2)

	report, err := newBatch(strategy).Execute(context.Background(), appConfig)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if report.Summary.TotalFiles != 5 {
		t.Errorf("Expected 5 files in report, got %d", report.Summary.TotalFiles)
	}
	if report.Summary.Succeeded != 5 {
		t.Errorf("Expected 5 succeeded, got %d", report.Summary.Succeeded)
	}
	if report.Summary.Failed != 0 {
		t.Errorf("Expected 0 failed, got %d", report.Summary.Failed)
	}
}

func TestProcessBatchUseCase_ConcurrencyBound(t *testing.T) {
	inputDir := t.TempDir()
	for i := 0; i < 8; i++ {
		writeFile(t, filepath.Join(inputDir, "doc"+string(rune('a'+i))+".pdf"), []byte("content"))
	}

	strategy := &fakeStrategy{output: []byte("x"), delay: 20 * time.Millisecond}
	appConfig := newBatchConfig(t, inputDir, 3)

	if _, err := newBatch(strategy).Execute(context.Background(), appConfig); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	maxActive := atomic.LoadInt64(&strategy.maxActive)
	if maxActive > 3 {
		t.Errorf("Expected at most 3 concurrent jobs, observed %d", maxActive)
	}
	if maxActive < 2 {
		t.Logf("Observed low concurrency (%d), scheduler may be slow on this machine", maxActive)
	}
}

func TestProcessBatchUseCase_FailedJobDoesNotStopBatch(t *testing.T) {
	inputDir := t.TempDir()
	writeFile(t, filepath.Join(inputDir, "ok.pdf"), []byte("content"))
	writeFile(t, filepath.Join(inputDir, "bad.pdf"), []byte("content"))

	// Стратегия падает только на одном файле
	strategy := &selectiveFailStrategy{failOn: "bad.pdf", output: []byte("small")}

	fileRepo := infraRepos.NewFileSystemRepository()
	resolver := usecases.NewResolvePathsUseCase(fileRepo, nil)
	job := usecases.NewCompressJobUseCase(strategy, strategy, nil, fileRepo, nil)
	batch := usecases.NewProcessBatchUseCase(resolver, job, fileRepo, infraRepos.NewCSVReportRepository(), nil)

	appConfig := newBatchConfig(t, inputDir, 2)
	report, err := batch.Execute(context.Background(), appConfig)
	if err != nil {
		t.Fatalf("Expected batch to finish despite job failure, got %v", err)
	}

	if report.Summary.Succeeded != 1 || report.Summary.Failed != 1 {
		t.Errorf("Expected 1 succeeded / 1 failed, got %d/%d",
			report.Summary.Succeeded, report.Summary.Failed)
	}
}

func TestProcessBatchUseCase_NoFilesFound(t *testing.T) {
	strategy := &fakeStrategy{output: []byte("x")}
	appConfig := newBatchConfig(t, t.TempDir(), 2)

	_, err := newBatch(strategy).Execute(context.Background(), appConfig)
	if !errors.Is(err, entities.ErrNoFilesFound) {
		t.Fatalf("Expected ErrNoFilesFound, got %v", err)
	}
}

func TestProcessBatchUseCase_ProgressReported(t *testing.T) {
	inputDir := t.TempDir()
	writeFile(t, filepath.Join(inputDir, "a.pdf"), []byte("content"))
	writeFile(t, filepath.Join(inputDir, "b.pdf"), []byte("content"))

	strategy := &fakeStrategy{output: []byte("x")}
	batch := newBatch(strategy)

	var updates []entities.ProcessingStatus
	batch.SetProgressReporter(func(status entities.ProcessingStatus) {
		updates = append(updates, status)
	})

	appConfig := newBatchConfig(t, inputDir, 1)
	if _, err := batch.Execute(context.Background(), appConfig); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(updates) == 0 {
		t.Fatal("Expected progress updates")
	}

	last := updates[len(updates)-1]
	if !last.IsComplete {
		t.Error("Expected final update to be complete")
	}
	if last.ProcessedFiles != 2 || last.TotalFiles != 2 {
		t.Errorf("Expected 2/2 processed, got %d/%d", last.ProcessedFiles, last.TotalFiles)
	}
	if last.Progress != 100 {
		t.Errorf("Expected 100%% progress, got %.1f", last.Progress)
	}
}

func TestProcessBatchUseCase_SavesReport(t *testing.T) {
	inputDir := t.TempDir()
	writeFile(t, filepath.Join(inputDir, "a.pdf"), []byte("content"))

	strategy := &fakeStrategy{output: []byte("x")}
	appConfig := newBatchConfig(t, inputDir, 1)

	if _, err := newBatch(strategy).Execute(context.Background(), appConfig); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	files, err := filepath.Glob(filepath.Join(appConfig.Output.ReportDirectory, "report_*.csv"))
	if err != nil || len(files) != 1 {
		t.Fatalf("Expected one CSV report in %s, got %v (%v)", appConfig.Output.ReportDirectory, files, err)
	}
}

// selectiveFailStrategy падает только на файлах с заданным именем
type selectiveFailStrategy struct {
	failOn string
	output []byte
}

func (s *selectiveFailStrategy) Name() string { return "selective" }

func (s *selectiveFailStrategy) Compress(ctx context.Context, inputPath, outputPath string, config *entities.CompressionConfig) error {
	if filepath.Base(inputPath) == s.failOn {
		return errors.New("corrupt file")
	}
	return os.WriteFile(outputPath, s.output, 0644)
}
