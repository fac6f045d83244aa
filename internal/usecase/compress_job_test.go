package usecases_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pdfcompressor/internal/domain/entities"
	infraRepos "pdfcompressor/internal/infrastructure/repositories"
	usecases "pdfcompressor/internal/usecase"
)

// fakeStrategy управляемая стратегия сжатия для тестов
type fakeStrategy struct {
	output []byte
	err    error
	delay  time.Duration

	mu        sync.Mutex
	tmpPaths  []string
	active    int64
	maxActive int64
}

func (s *fakeStrategy) Name() string { return "fake" }

func (s *fakeStrategy) Compress(ctx context.Context, inputPath, outputPath string, config *entities.CompressionConfig) error {
	current := atomic.AddInt64(&s.active, 1)
	defer atomic.AddInt64(&s.active, -1)
	for {
		max := atomic.LoadInt64(&s.maxActive)
		if current <= max || atomic.CompareAndSwapInt64(&s.maxActive, max, current) {
			break
		}
	}

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	s.tmpPaths = append(s.tmpPaths, outputPath)
	s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	return os.WriteFile(outputPath, s.output, 0644)
}

// fakeOCR управляемый OCR процессор для тестов
type fakeOCR struct {
	available bool
	err       error
	calls     int64
}

func (o *fakeOCR) Available() bool { return o.available }

func (o *fakeOCR) AddTextLayer(ctx context.Context, path string) error {
	atomic.AddInt64(&o.calls, 1)
	return o.err
}

func newJobConfig(t *testing.T, policy entities.WritePolicy) *entities.CompressionConfig {
	t.Helper()
	config := entities.NewCompressionConfig(entities.PresetBalanced, 0)
	config.WritePolicy = policy
	config.OutputDir = filepath.Join(t.TempDir(), "output")
	config.BackupDir = filepath.Join(t.TempDir(), "backups")
	config.ReportDir = filepath.Join(t.TempDir(), "reports")
	return config
}

func newJob(strategy *fakeStrategy, ocr *fakeOCR) *usecases.CompressJobUseCase {
	if ocr == nil {
		return usecases.NewCompressJobUseCase(strategy, strategy, nil, infraRepos.NewFileSystemRepository(), nil)
	}
	return usecases.NewCompressJobUseCase(strategy, strategy, ocr, infraRepos.NewFileSystemRepository(), nil)
}

func TestCompressJobUseCase_SuffixPolicy(t *testing.T) {
	source := filepath.Join(t.TempDir(), "report.pdf")
	original := []byte("original pdf content")
	writeFile(t, source, original)

	strategy := &fakeStrategy{output: []byte("small")}
	config := newJobConfig(t, entities.WritePolicySuffix)

	result := newJob(strategy, nil).Execute(context.Background(), source, config)

	if result.Status != entities.StatusOK {
		t.Fatalf("Expected OK status, got %s: %s", result.Status, result.Note)
	}

	expectedOutput := filepath.Join(config.OutputDir, "report_compressed.pdf")
	if result.OutputPath != expectedOutput {
		t.Errorf("Expected output %s, got %s", expectedOutput, result.OutputPath)
	}

	// Оригинал при политике suffix не изменяется
	data, err := os.ReadFile(source)
	if err != nil || string(data) != string(original) {
		t.Errorf("Source file must stay untouched, got %q (%v)", data, err)
	}

	if result.SizeBefore != int64(len(original)) {
		t.Errorf("Expected size before %d, got %d", len(original), result.SizeBefore)
	}
	if result.SizeAfter != int64(len("small")) {
		t.Errorf("Expected size after %d, got %d", len("small"), result.SizeAfter)
	}
	if result.SavedBytes != result.SizeBefore-result.SizeAfter {
		t.Errorf("Expected saved %d, got %d", result.SizeBefore-result.SizeAfter, result.SavedBytes)
	}
	if result.BackupPath != "" {
		t.Errorf("Suffix policy must not create backups, got %s", result.BackupPath)
	}
}

func TestCompressJobUseCase_OverwritePolicyCreatesBackup(t *testing.T) {
	source := filepath.Join(t.TempDir(), "invoice.pdf")
	original := []byte("original invoice bytes")
	writeFile(t, source, original)

	strategy := &fakeStrategy{output: []byte("zip")}
	config := newJobConfig(t, entities.WritePolicyOverwrite)

	result := newJob(strategy, nil).Execute(context.Background(), source, config)

	if result.Status != entities.StatusOK {
		t.Fatalf("Expected OK status, got %s: %s", result.Status, result.Note)
	}
	if result.OutputPath != source {
		t.Errorf("Overwrite policy must write to source path, got %s", result.OutputPath)
	}

	// Резервная копия байт в байт совпадает с оригиналом
	if result.BackupPath == "" {
		t.Fatal("Expected backup path to be set")
	}
	if filepath.Dir(result.BackupPath) != config.BackupDir {
		t.Errorf("Expected backup in %s, got %s", config.BackupDir, result.BackupPath)
	}
	if !strings.HasPrefix(filepath.Base(result.BackupPath), "invoice_") {
		t.Errorf("Expected backup name invoice_<timestamp>.pdf, got %s", filepath.Base(result.BackupPath))
	}
	backup, err := os.ReadFile(result.BackupPath)
	if err != nil || string(backup) != string(original) {
		t.Errorf("Backup must match original, got %q (%v)", backup, err)
	}

	data, err := os.ReadFile(source)
	if err != nil || string(data) != "zip" {
		t.Errorf("Source must contain compressed bytes, got %q (%v)", data, err)
	}
}

func TestCompressJobUseCase_TempStagedInOutputDirectory(t *testing.T) {
	// Временный файл обязан жить в директории результата: замена
	// оригинала тогда сводится к переименованию внутри одной файловой
	// системы и не проходит через копирование поверх исходного файла
	tests := []struct {
		name   string
		policy entities.WritePolicy
	}{
		{"Suffix policy", entities.WritePolicySuffix},
		{"Overwrite policy", entities.WritePolicyOverwrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := filepath.Join(t.TempDir(), "doc.pdf")
			writeFile(t, source, []byte("content"))

			strategy := &fakeStrategy{output: []byte("ok")}
			config := newJobConfig(t, tt.policy)

			result := newJob(strategy, nil).Execute(context.Background(), source, config)
			if result.Status != entities.StatusOK {
				t.Fatalf("Expected OK status, got %s: %s", result.Status, result.Note)
			}

			if len(strategy.tmpPaths) != 1 {
				t.Fatalf("Expected one compression call, got %d", len(strategy.tmpPaths))
			}
			tmpPath := strategy.tmpPaths[0]
			if filepath.Dir(tmpPath) != filepath.Dir(result.OutputPath) {
				t.Errorf("Temp file %s must be staged next to output %s", tmpPath, result.OutputPath)
			}
			if !strings.HasPrefix(filepath.Base(tmpPath), "tmp_doc_") {
				t.Errorf("Expected tmp_doc_<ts>_<seq>.pdf temp name, got %s", filepath.Base(tmpPath))
			}
		})
	}
}

func TestCompressJobUseCase_BackupFailureAbortsBeforeCompression(t *testing.T) {
	source := filepath.Join(t.TempDir(), "ledger.pdf")
	original := []byte("ledger original bytes")
	writeFile(t, source, original)

	strategy := &fakeStrategy{output: []byte("small")}
	config := newJobConfig(t, entities.WritePolicyOverwrite)

	// Файл на месте директории резервных копий делает ее создание невозможным
	writeFile(t, config.BackupDir, []byte("not a directory"))

	result := newJob(strategy, nil).Execute(context.Background(), source, config)

	if result.Status != entities.StatusError {
		t.Fatalf("Expected ERROR status, got %s", result.Status)
	}
	if result.BackupPath != "" {
		t.Errorf("Failed backup must leave backup path empty, got %s", result.BackupPath)
	}
	if len(strategy.tmpPaths) != 0 {
		t.Errorf("Compression must not run after backup failure, got %d calls", len(strategy.tmpPaths))
	}

	data, err := os.ReadFile(source)
	if err != nil || string(data) != string(original) {
		t.Errorf("Source must stay untouched after backup failure, got %q (%v)", data, err)
	}
}

func TestCompressJobUseCase_StrategyErrorContained(t *testing.T) {
	source := filepath.Join(t.TempDir(), "broken.pdf")
	original := []byte("broken but intact")
	writeFile(t, source, original)

	strategy := &fakeStrategy{err: errors.New("gs exploded")}
	config := newJobConfig(t, entities.WritePolicySuffix)

	result := newJob(strategy, nil).Execute(context.Background(), source, config)

	if result.Status != entities.StatusError {
		t.Fatalf("Expected ERROR status, got %s", result.Status)
	}
	if result.OutputPath != "" {
		t.Errorf("Failed job must have empty output path, got %s", result.OutputPath)
	}
	if result.SizeAfter != result.SizeBefore {
		t.Errorf("Failed job must report sizeAfter == sizeBefore, got %d != %d", result.SizeAfter, result.SizeBefore)
	}
	if result.SavedBytes != 0 || result.SavedPct != 0 {
		t.Errorf("Failed job must report zero savings, got %d / %.1f", result.SavedBytes, result.SavedPct)
	}
	if !strings.Contains(result.Note, "gs exploded") {
		t.Errorf("Expected note with cause, got %q", result.Note)
	}

	// Оригинал не тронут
	data, err := os.ReadFile(source)
	if err != nil || string(data) != string(original) {
		t.Errorf("Source must stay untouched after failure, got %q (%v)", data, err)
	}
}

func TestCompressJobUseCase_MissingSource(t *testing.T) {
	strategy := &fakeStrategy{output: []byte("x")}
	config := newJobConfig(t, entities.WritePolicySuffix)

	result := newJob(strategy, nil).Execute(context.Background(), filepath.Join(t.TempDir(), "ghost.pdf"), config)

	if result.Status != entities.StatusError {
		t.Fatalf("Expected ERROR status for missing source, got %s", result.Status)
	}
}

func TestCompressJobUseCase_TempFileCleanedUp(t *testing.T) {
	source := filepath.Join(t.TempDir(), "doc.pdf")
	writeFile(t, source, []byte("content"))

	tests := []struct {
		name     string
		strategy *fakeStrategy
	}{
		{"After success", &fakeStrategy{output: []byte("ok")}},
		{"After failure", &fakeStrategy{err: errors.New("fail")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := newJobConfig(t, entities.WritePolicySuffix)
			newJob(tt.strategy, nil).Execute(context.Background(), source, config)

			for _, tmpPath := range tt.strategy.tmpPaths {
				if _, err := os.Stat(tmpPath); !os.IsNotExist(err) {
					t.Errorf("Temp file %s must be removed, stat err: %v", tmpPath, err)
				}
			}
		})
	}
}

func TestCompressJobUseCase_OCRNotesNeverFatal(t *testing.T) {
	tests := []struct {
		name         string
		ocr          *fakeOCR
		expectedNote string
	}{
		{"OCR unavailable", &fakeOCR{available: false}, "ocrmypdf не найден"},
		{"OCR fails", &fakeOCR{available: true, err: errors.New("no tesseract")}, "no tesseract"},
		{"OCR succeeds", &fakeOCR{available: true}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := filepath.Join(t.TempDir(), "scan.pdf")
			writeFile(t, source, []byte("scanned"))

			strategy := &fakeStrategy{output: []byte("ok")}
			config := newJobConfig(t, entities.WritePolicySuffix)
			config.UseOCR = true

			result := newJob(strategy, tt.ocr).Execute(context.Background(), source, config)

			if result.Status != entities.StatusOK {
				t.Fatalf("OCR issue must not fail the job, got %s: %s", result.Status, result.Note)
			}
			if tt.expectedNote == "" && result.Note != "" {
				t.Errorf("Expected empty note, got %q", result.Note)
			}
			if tt.expectedNote != "" && !strings.Contains(result.Note, tt.expectedNote) {
				t.Errorf("Expected note containing %q, got %q", tt.expectedNote, result.Note)
			}
		})
	}
}

func TestCompressJobUseCase_OCRSkippedForImages(t *testing.T) {
	source := filepath.Join(t.TempDir(), "photo.jpg")
	writeFile(t, source, []byte("jpeg bytes"))

	strategy := &fakeStrategy{output: []byte("ok")}
	ocr := &fakeOCR{available: true}
	config := newJobConfig(t, entities.WritePolicySuffix)
	config.UseOCR = true
	config.EnableJPEG = true

	result := newJob(strategy, ocr).Execute(context.Background(), source, config)

	if result.Status != entities.StatusOK {
		t.Fatalf("Expected OK status, got %s: %s", result.Status, result.Note)
	}
	if atomic.LoadInt64(&ocr.calls) != 0 {
		t.Errorf("OCR must not run for images, got %d calls", ocr.calls)
	}
}
