package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"pdfcompressor/internal/domain/repositories"
	"pdfcompressor/internal/infrastructure/config"
	"pdfcompressor/internal/infrastructure/logging"
	"pdfcompressor/internal/interface/controllers"
	"pdfcompressor/internal/presentation/tui"
)

func main() {
	noTUI := flag.Bool("no-tui", false, "Запуск без интерфейса (консольный режим)")
	configPath := flag.String("config", "config.yaml", "Путь к файлу конфигурации")
	flag.Parse()

	configRepo := config.NewRepository()
	appConfig, err := configRepo.Load(*configPath)
	if err != nil {
		fmt.Printf("✗ Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	fileLogger, err := logging.NewFileLogger(
		appConfig.Output.LogFileName,
		appConfig.Output.LogLevel,
		appConfig.Output.LogMaxSizeMB,
		appConfig.Output.LogToFile,
	)
	if err != nil {
		fmt.Printf("✗ Ошибка создания логгера: %v\n", err)
		os.Exit(1)
	}

	// Логирование в файл может быть выключено: интерфейс остается nil,
	// а не типизированным nil-указателем
	var logger repositories.Logger
	if fileLogger != nil {
		logger = fileLogger
		defer fileLogger.Close()
	}

	// Консольный режим: один запуск обработки без интерактивного интерфейса
	if *noTUI {
		batch, err := buildBatchUseCase(appConfig, logger)
		if err != nil {
			fmt.Printf("✗ Ошибка конфигурации: %v\n", err)
			os.Exit(1)
		}

		controller := controllers.NewCLIController(batch)
		if err := controller.Run(context.Background(), appConfig); err != nil {
			os.Exit(1)
		}
		return
	}

	tuiManager := tui.NewManager()
	tuiManager.Initialize()

	processor := NewApplicationProcessor(tuiManager, logger)
	tuiManager.SetOnStartProcessing(processor.StartProcessing)

	// Автостарт запускает обработку сразу после отрисовки интерфейса
	if appConfig.Compression.AutoStart {
		go func() {
			time.Sleep(500 * time.Millisecond)
			processor.StartProcessing()
		}()
	}

	if err := tuiManager.Run(); err != nil {
		fmt.Printf("✗ Ошибка интерфейса: %v\n", err)
	}

	processor.Shutdown()
	tuiManager.Cleanup()
}
