package tui

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"pdfcompressor/internal/domain/entities"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"gopkg.in/yaml.v3"
)

// UI Configuration constants
const (
	MaxLogBufferSize   = 1000
	LogFlushInterval   = 50 * time.Millisecond
	ProgressBarWidth   = 40
	MaxFileNameLength  = 60
	MaxFileNameDisplay = 57
	ProgressViewHeight = 11

	formItemLicenseIndex = 8
)

// Manager управляет TUI интерфейсом
type Manager struct {
	app           *tview.Application
	pages         *tview.Pages
	currentScreen entities.UIScreen

	// UI компоненты
	mainMenu     *tview.List
	configForm   *tview.Form
	progressView *tview.TextView
	logView      *tview.TextView
	resultsTable *tview.Table

	// Callbacks
	onStartProcessing func()

	// Состояние
	configData   entities.Config
	logBuffer    []string
	statusMutex  sync.RWMutex
	isProcessing bool
	hasResults   bool

	// Батчинг логов через канал
	logChan  chan string
	logDone  chan struct{}
	logMutex sync.Mutex
}

// NewManager создает новый менеджер TUI
func NewManager() *Manager {
	m := &Manager{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		logBuffer: make([]string, 0, MaxLogBufferSize),
		logChan:   make(chan string, 100),
		logDone:   make(chan struct{}),
	}
	go m.logProcessor()
	return m
}

// Initialize инициализирует TUI
func (m *Manager) Initialize() {
	m.loadConfig()
	m.createUI()
	m.setupKeyBindings()
}

// Run запускает TUI
func (m *Manager) Run() error {
	return m.app.SetRoot(m.pages, true).EnableMouse(true).Run()
}

// SetOnStartProcessing устанавливает callback для начала обработки
func (m *Manager) SetOnStartProcessing(callback func()) {
	m.onStartProcessing = callback
}

// SendStatusUpdate отправляет обновление статуса
func (m *Manager) SendStatusUpdate(status entities.ProcessingStatus) {
	m.updateProgress(status)
}

// GetConfig возвращает текущую конфигурацию из формы
func (m *Manager) GetConfig() *entities.Config {
	config := m.configData
	return &config
}

// loadConfig загружает конфигурацию
func (m *Manager) loadConfig() {
	data, err := os.ReadFile("config.yaml")
	if err != nil {
		m.configData = defaultUIConfig()
		m.saveConfig()
		return
	}

	if err := yaml.Unmarshal(data, &m.configData); err != nil {
		m.configData = defaultUIConfig()
	}
}

// saveConfig сохраняет конфигурацию
func (m *Manager) saveConfig() {
	data, err := yaml.Marshal(&m.configData)
	if err != nil {
		return
	}
	os.WriteFile("config.yaml", data, 0644)
}

// defaultUIConfig конфигурация по умолчанию для первого запуска
func defaultUIConfig() entities.Config {
	return entities.Config{
		Scanner: entities.ScannerConfig{
			Paths:           []string{"./pdfs"},
			Recursive:       true,
			OutputDirectory: "./output",
			WritePolicy:     string(entities.WritePolicySuffix),
		},
		Compression: entities.AppCompressionConfig{
			Preset:      string(entities.PresetBalanced),
			CustomDPI:   150,
			JPEGQuality: 75,
			Algorithm:   "pdfcpu",
		},
		Processing: entities.ProcessingConfig{
			ParallelWorkers: 2,
			TimeoutSeconds:  entities.DefaultTimeoutSeconds,
		},
		Output: entities.OutputConfig{
			LogLevel:        "info",
			LogToFile:       true,
			LogFileName:     "compressor.log",
			LogMaxSizeMB:    10,
			BackupDirectory: "./backups",
			ReportDirectory: "./reports",
		},
	}
}

// createUI создает пользовательский интерфейс
func (m *Manager) createUI() {
	m.createMainMenu()
	m.createConfigScreen()
	m.createProcessingScreen()
	m.createResultsScreen()

	m.pages.AddPage("menu", m.mainMenu, true, true)
	m.pages.AddPage("config", m.configForm, true, false)
	m.pages.AddPage("processing", m.createProcessingLayout(), true, false)
	m.pages.AddPage("results", m.resultsTable, true, false)

	m.currentScreen = entities.UIScreenMenu
}

// createMainMenu создает главное меню
func (m *Manager) createMainMenu() {
	m.mainMenu = tview.NewList().
		AddItem("🚀 Запуск сжатия", "Начать пакетное сжатие PDF файлов", '1', func() {
			m.startProcessing()
		}).
		AddItem("⚙️ Конфигурация", "Настроить пути, профиль и параметры обработки", '2', func() {
			m.switchToScreen(entities.UIScreenConfig)
		}).
		AddItem("📋 Результаты", "Показать результаты последнего запуска", '3', func() {
			if m.hasResults {
				m.switchToScreen(entities.UIScreenResults)
			}
		}).
		AddItem("❌ Выход", "Закрыть приложение", 'q', func() {
			m.Cleanup()
			m.app.Stop()
		})

	m.mainMenu.SetBorder(true).
		SetTitle("🔥 PDF Folder Compressor - Главное меню").
		SetTitleAlign(tview.AlignCenter)

	m.mainMenu.SetSelectedBackgroundColor(tcell.ColorDarkBlue).
		SetSelectedTextColor(tcell.ColorWhite).
		SetMainTextColor(tcell.ColorWhite).
		SetSecondaryTextColor(tcell.ColorGray)
}

// createConfigScreen создает экран конфигурации
func (m *Manager) createConfigScreen() {
	presets := []string{"lossless", "balanced", "aggressive", "custom"}
	policies := []string{"suffix", "overwrite"}
	qualities := []string{"30", "40", "50", "60", "70", "75", "80", "90"}

	m.configForm = tview.NewForm().
		AddInputField("Пути (через запятую)", strings.Join(m.configData.Scanner.Paths, ", "), 60, nil, func(text string) {
			m.configData.Scanner.Paths = splitPaths(text)
		}).
		AddCheckbox("Обходить поддиректории", m.configData.Scanner.Recursive, func(checked bool) {
			m.configData.Scanner.Recursive = checked
		}).
		AddInputField("Выходная директория", m.configData.Scanner.OutputDirectory, 60, nil, func(text string) {
			m.configData.Scanner.OutputDirectory = text
		}).
		AddDropDown("Политика записи", policies, indexOf(policies, m.configData.Scanner.WritePolicy), func(option string, optionIndex int) {
			m.configData.Scanner.WritePolicy = option
		}).
		AddDropDown("Профиль сжатия", presets, indexOf(presets, m.configData.Compression.Preset), func(option string, optionIndex int) {
			m.configData.Compression.Preset = option
		}).
		AddInputField("Разрешение custom (72-300 dpi)", strconv.Itoa(m.configData.Compression.CustomDPI), 10, nil, func(text string) {
			if dpi, err := strconv.Atoi(text); err == nil && dpi >= 72 && dpi <= 300 {
				m.configData.Compression.CustomDPI = dpi
			}
		}).
		AddDropDown("Качество JPEG (%)", qualities, indexOf(qualities, strconv.Itoa(m.configData.Compression.JPEGQuality)), func(option string, optionIndex int) {
			if quality, err := strconv.Atoi(option); err == nil {
				m.configData.Compression.JPEGQuality = quality
			}
		}).
		AddDropDown("Движок без Ghostscript", []string{"pdfcpu", "unipdf"}, func() int {
			if m.configData.Compression.Algorithm == "unipdf" {
				return 1
			}
			return 0
		}(), func(option string, optionIndex int) {
			m.configData.Compression.Algorithm = option
			m.updateLicenseFieldVisibility()
		}).
		AddInputField("Лицензия UniPDF (UNIDOC_LICENSE_API_KEY)", m.configData.Compression.UniPDFLicenseKey, 60, nil, func(text string) {
			m.configData.Compression.UniPDFLicenseKey = text
		}).
		AddCheckbox("OCR текстовый слой", m.configData.Compression.UseOCR, func(checked bool) {
			m.configData.Compression.UseOCR = checked
		}).
		AddCheckbox("Сжимать JPEG", m.configData.Compression.EnableJPEG, func(checked bool) {
			m.configData.Compression.EnableJPEG = checked
		}).
		AddCheckbox("Сжимать PNG", m.configData.Compression.EnablePNG, func(checked bool) {
			m.configData.Compression.EnablePNG = checked
		}).
		AddInputField("Параллельных воркеров", strconv.Itoa(m.configData.Processing.ParallelWorkers), 10, nil, func(text string) {
			if workers, err := strconv.Atoi(text); err == nil && workers >= 1 {
				m.configData.Processing.ParallelWorkers = workers
			}
		}).
		AddCheckbox("Автостарт", m.configData.Compression.AutoStart, func(checked bool) {
			m.configData.Compression.AutoStart = checked
		}).
		AddButton("Сохранить", func() {
			m.saveConfig()
			m.switchToScreen(entities.UIScreenMenu)
			m.mainMenu.SetCurrentItem(1)
		})

	m.updateLicenseFieldVisibility()

	m.configForm.SetBorder(true).
		SetTitle("🔥 PDF Folder Compressor - Конфигурация (ESC - выйти без сохранения)").
		SetTitleAlign(tview.AlignCenter)

	// ESC отменяет несохраненные изменения
	m.configForm.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			m.loadConfig()
			m.switchToScreen(entities.UIScreenMenu)
			return nil
		}
		return event
	})
}

// createProcessingScreen создает экран обработки
func (m *Manager) createProcessingScreen() {
	m.progressView = tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetScrollable(true)

	m.progressView.SetBorder(true).
		SetTitle("📊 Прогресс обработки").
		SetTitleAlign(tview.AlignCenter)

	m.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetMaxLines(MaxLogBufferSize)

	m.logView.SetBorder(true).
		SetTitle("📋 Журнал событий").
		SetTitleAlign(tview.AlignCenter)
}

// createResultsScreen создает экран результатов
func (m *Manager) createResultsScreen() {
	m.resultsTable = tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0).
		SetSelectable(true, false)

	m.resultsTable.SetBorder(true).
		SetTitle("📋 Результаты последнего запуска (ESC - меню)").
		SetTitleAlign(tview.AlignCenter)
}

// createProcessingLayout создает layout для экрана обработки
func (m *Manager) createProcessingLayout() *tview.Flex {
	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(m.logView, 0, 1, false).
		AddItem(m.progressView, ProgressViewHeight, 0, false)
}

// setupKeyBindings настраивает горячие клавиши
func (m *Manager) setupKeyBindings() {
	m.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			m.switchToScreen(entities.UIScreenMenu)
			return nil
		case tcell.KeyF2:
			m.switchToScreen(entities.UIScreenConfig)
			return nil
		case tcell.KeyF3:
			if m.isProcessing {
				m.switchToScreen(entities.UIScreenProcessing)
			}
			return nil
		case tcell.KeyF4:
			if m.hasResults {
				m.switchToScreen(entities.UIScreenResults)
			}
			return nil
		case tcell.KeyEscape:
			if m.currentScreen == entities.UIScreenConfig {
				// В конфигурации ESC обрабатывается локально формой
				return event
			} else if m.currentScreen != entities.UIScreenMenu {
				m.switchToScreen(entities.UIScreenMenu)
				return nil
			}
		}

		if m.currentScreen == entities.UIScreenMenu {
			switch event.Rune() {
			case '1':
				m.startProcessing()
				return nil
			case '2':
				m.switchToScreen(entities.UIScreenConfig)
				return nil
			case '3':
				if m.hasResults {
					m.switchToScreen(entities.UIScreenResults)
				}
				return nil
			case 'q', 'Q':
				m.Cleanup()
				m.app.Stop()
				return nil
			}
		}

		return event
	})
}

// switchToScreen переключает на указанный экран
func (m *Manager) switchToScreen(screen entities.UIScreen) {
	m.statusMutex.Lock()
	defer m.statusMutex.Unlock()

	m.currentScreen = screen

	switch screen {
	case entities.UIScreenMenu:
		m.pages.SwitchToPage("menu")
	case entities.UIScreenConfig:
		// При входе в конфигурацию пересобираем форму из файла
		m.loadConfig()
		m.createConfigScreen()
		m.pages.RemovePage("config")
		m.pages.AddPage("config", m.configForm, true, false)
		m.pages.SwitchToPage("config")
	case entities.UIScreenProcessing:
		m.pages.SwitchToPage("processing")
	case entities.UIScreenResults:
		m.pages.SwitchToPage("results")
	}
}

// startProcessing начинает обработку
func (m *Manager) startProcessing() {
	m.saveConfig()
	m.isProcessing = true
	m.switchToScreen(entities.UIScreenProcessing)

	if m.onStartProcessing != nil {
		go m.onStartProcessing()
	}
}

// ShowReport заполняет таблицу результатов последнего запуска
func (m *Manager) ShowReport(report *entities.Report) {
	if report == nil || m.resultsTable == nil {
		return
	}

	m.app.QueueUpdateDraw(func() {
		m.resultsTable.Clear()

		headers := []string{"Файл", "Результат", "До", "После", "Сжатие", "Статус", "Пометка"}
		for col, header := range headers {
			m.resultsTable.SetCell(0, col, tview.NewTableCell("[yellow]"+header).
				SetSelectable(false))
		}

		for row, result := range report.Results {
			statusColor := "[green]"
			if result.Status == entities.StatusError {
				statusColor = "[red]"
			}

			m.resultsTable.SetCell(row+1, 0, tview.NewTableCell(filepath.Base(result.SourcePath)))
			m.resultsTable.SetCell(row+1, 1, tview.NewTableCell(result.OutputPath))
			m.resultsTable.SetCell(row+1, 2, tview.NewTableCell(formatSize(result.SizeBefore)))
			m.resultsTable.SetCell(row+1, 3, tview.NewTableCell(formatSize(result.SizeAfter)))
			m.resultsTable.SetCell(row+1, 4, tview.NewTableCell(fmt.Sprintf("%.1f%%", result.SavedPct)))
			m.resultsTable.SetCell(row+1, 5, tview.NewTableCell(statusColor+string(result.Status)))
			m.resultsTable.SetCell(row+1, 6, tview.NewTableCell(result.Note))
		}
	})

	m.hasResults = true
}

// updateProgress обновляет прогресс
func (m *Manager) updateProgress(status entities.ProcessingStatus) {
	if m.progressView == nil {
		return
	}

	progressBar := m.createProgressBar(status.Progress, ProgressBarWidth)
	displayFile := m.truncateFileName(status.CurrentFile, MaxFileNameLength, MaxFileNameDisplay)

	phaseText := status.Phase.String()
	if status.Message != "" {
		phaseText = status.Message
	}

	progressText := fmt.Sprintf(
		"[yellow]⚙️  Фаза:[white] %s\n\n"+
			"[yellow]📁 Текущий файл:[white] %s\n",
		phaseText,
		filepath.Base(displayFile),
	)

	if status.CurrentFileSize > 0 {
		progressText += fmt.Sprintf("[dim]   Размер: %s[white]\n", formatSize(status.CurrentFileSize))
	}

	progressText += fmt.Sprintf(
		"\n[cyan]📊 Прогресс:[white] %s [cyan]%.1f%%[white]\n\n",
		progressBar,
		status.Progress,
	)

	progressText += fmt.Sprintf(
		"[green]📈 Статистика файлов:[white]\n"+
			"  • Всего: [cyan]%d[white]\n"+
			"  • Обработано: [cyan]%d[white]\n"+
			"  • Успешно: [green]%d[white]",
		status.TotalFiles,
		status.ProcessedFiles,
		status.SuccessfulFiles,
	)

	if status.FailedFiles > 0 {
		progressText += fmt.Sprintf("\n  • Ошибок: [red]%d[white]", status.FailedFiles)
	}

	if status.TotalOriginalSize > 0 {
		progressText += fmt.Sprintf(
			"\n\n[green]💾 Статистика сжатия:[white]\n"+
				"  • Исходный размер: [cyan]%s[white]\n"+
				"  • Сжатый размер: [cyan]%s[white]\n"+
				"  • Среднее сжатие: [green]%.1f%%[white]\n"+
				"  • Сэкономлено: [green]%s[white]",
			formatSize(status.TotalOriginalSize),
			formatSize(status.TotalCompressedSize),
			status.AverageCompression,
			formatSize(status.TotalSavedSpace),
		)
	}

	progressText += fmt.Sprintf(
		"\n\n[yellow]⏱️  Время:[white]\n"+
			"  • Прошло: [cyan]%s[white]",
		status.FormatElapsedTime(),
	)

	if !status.IsComplete && status.EstimatedTime > 0 {
		progressText += fmt.Sprintf("\n  • Осталось: [cyan]~%s[white]", status.FormatEstimatedTime())
	}

	progressText += "\n\n"

	if status.IsComplete {
		if status.Error != nil {
			progressText += "[red]❌ Обработка завершена с ошибкой![white]\n"
			progressText += fmt.Sprintf("[red]Ошибка: %v[white]\n", status.Error)
		} else {
			progressText += "[green]✅ Обработка успешно завершена![white]\n"
			progressText += "[yellow]F4[white] - Таблица результатов\n"
		}
		m.isProcessing = false
	}

	progressText += "[yellow]F1[white] - Главное меню\n"

	m.app.QueueUpdateDraw(func() {
		m.progressView.SetText(progressText)
	})
}

// truncateFileName корректно усекает имя файла с учетом UTF-8
func (m *Manager) truncateFileName(fileName string, maxLength, truncateAt int) string {
	runes := []rune(fileName)
	if len(runes) <= maxLength {
		return fileName
	}
	return string(runes[:truncateAt]) + "..."
}

// createProgressBar создает цветной прогресс-бар
func (m *Manager) createProgressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	} else if progress > 100 {
		progress = 100
	}

	filled := int(math.Round(progress * float64(width) / 100))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	const filledChar = "█"
	const emptyChar = "░"

	var color string
	switch {
	case progress < 25:
		color = "red"
	case progress < 50:
		color = "yellow"
	case progress < 75:
		color = "blue"
	default:
		color = "green"
	}

	return fmt.Sprintf("[%s]%s[gray]%s", color,
		strings.Repeat(filledChar, filled),
		strings.Repeat(emptyChar, width-filled))
}

// AddLog добавляет запись в лог через канал (неблокирующе)
func (m *Manager) AddLog(level, message string) {
	var color string
	switch strings.ToLower(level) {
	case "error":
		color = "red"
	case "warning":
		color = "yellow"
	case "success":
		color = "green"
	case "debug":
		color = "gray"
	default:
		color = "white"
	}

	logLine := fmt.Sprintf("[%s]%s:[white] %s", color, strings.ToUpper(level), message)

	// Если канал переполнен, пропускаем лог вместо блокировки
	select {
	case m.logChan <- logLine:
	default:
	}
}

// logProcessor обрабатывает логи в отдельной горутине с батчингом
func (m *Manager) logProcessor() {
	ticker := time.NewTicker(LogFlushInterval)
	defer ticker.Stop()

	batch := make([]string, 0, 50)

	for {
		select {
		case logLine := <-m.logChan:
			batch = append(batch, logLine)
			if len(batch) >= 20 {
				m.flushLogBatch(batch)
				batch = make([]string, 0, 50)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				m.flushLogBatch(batch)
				batch = make([]string, 0, 50)
			}

		case <-m.logDone:
			if len(batch) > 0 {
				m.flushLogBatch(batch)
			}
			return
		}
	}
}

// flushLogBatch сбрасывает батч логов в UI
func (m *Manager) flushLogBatch(batch []string) {
	m.statusMutex.Lock()
	m.logBuffer = append(m.logBuffer, batch...)

	if len(m.logBuffer) > MaxLogBufferSize {
		m.logBuffer = m.logBuffer[len(m.logBuffer)-MaxLogBufferSize:]
	}

	logText := strings.Join(m.logBuffer, "\n")
	m.statusMutex.Unlock()

	if m.logView != nil {
		m.app.QueueUpdateDraw(func() {
			if m.logView != nil {
				m.logView.SetText(logText)
				m.logView.ScrollToEnd()
			}
		})
	}
}

// Cleanup освобождает ресурсы менеджера (идемпотентный)
func (m *Manager) Cleanup() {
	m.logMutex.Lock()
	defer m.logMutex.Unlock()

	select {
	case <-m.logDone:
		return
	default:
		close(m.logDone)
	}
}

// updateLicenseFieldVisibility подсвечивает поле лицензии для UniPDF
func (m *Manager) updateLicenseFieldVisibility() {
	if m.configForm == nil {
		return
	}

	if m.configForm.GetFormItemCount() <= formItemLicenseIndex {
		return
	}
	licenseField := m.configForm.GetFormItem(formItemLicenseIndex).(*tview.InputField)

	if m.configData.Compression.Algorithm == "unipdf" {
		licenseField.SetLabel("🔑 Лицензия UniPDF (UNIDOC_LICENSE_API_KEY) - ОБЯЗАТЕЛЬНО")
		licenseField.SetFieldBackgroundColor(tcell.ColorDarkBlue)
	} else {
		licenseField.SetLabel("Лицензия UniPDF (не требуется для PDFCPU)")
		licenseField.SetFieldBackgroundColor(tcell.ColorDarkGray)
	}
}

// splitPaths разбирает строку путей, разделенных запятыми
func splitPaths(text string) []string {
	var paths []string
	for _, part := range strings.Split(text, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	return paths
}

// indexOf возвращает позицию значения в списке опций (0, если не найдено)
func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return 0
}

// formatSize форматирует размер в человекочитаемом виде
func formatSize(bytes int64) string {
	value := float64(bytes)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if value < 1024 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1f PB", value)
}
