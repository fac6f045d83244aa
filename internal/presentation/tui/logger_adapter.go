package tui

import (
	"fmt"

	"pdfcompressor/internal/domain/repositories"
)

// UILogger дублирует логи в файл и в TUI
type UILogger struct {
	fileLogger repositories.Logger
	tuiManager *Manager
}

// NewUILogger создает новый UI логгер
func NewUILogger(fileLogger repositories.Logger, tuiManager *Manager) *UILogger {
	return &UILogger{
		fileLogger: fileLogger,
		tuiManager: tuiManager,
	}
}

// Debug логирует отладочное сообщение
func (l *UILogger) Debug(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Debug(format, args...)
	}
	if l.tuiManager != nil {
		l.tuiManager.AddLog("debug", fmt.Sprintf(format, args...))
	}
}

// Info логирует информационное сообщение
func (l *UILogger) Info(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Info(format, args...)
	}
	if l.tuiManager != nil {
		l.tuiManager.AddLog("info", fmt.Sprintf(format, args...))
	}
}

// Warning логирует предупреждение
func (l *UILogger) Warning(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Warning(format, args...)
	}
	if l.tuiManager != nil {
		l.tuiManager.AddLog("warning", fmt.Sprintf(format, args...))
	}
}

// Error логирует ошибку
func (l *UILogger) Error(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Error(format, args...)
	}
	if l.tuiManager != nil {
		l.tuiManager.AddLog("error", fmt.Sprintf(format, args...))
	}
}

// Success логирует успешное выполнение
func (l *UILogger) Success(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Success(format, args...)
	}
	if l.tuiManager != nil {
		l.tuiManager.AddLog("success", fmt.Sprintf(format, args...))
	}
}

// Close закрывает логгер
func (l *UILogger) Close() error {
	if l.fileLogger != nil {
		return l.fileLogger.Close()
	}
	return nil
}
