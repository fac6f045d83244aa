package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Уровни логирования по возрастанию важности
var logLevels = map[string]int{
	"debug":   0,
	"info":    1,
	"warning": 2,
	"error":   3,
}

// FileLogger реализация логгера в файл
type FileLogger struct {
	file     *os.File
	logger   *log.Logger
	minLevel int
}

// NewFileLogger создает новый файловый логгер
func NewFileLogger(filename, logLevel string, maxSizeMB int, logToFile bool) (*FileLogger, error) {
	if !logToFile {
		return nil, nil
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}

	minLevel, ok := logLevels[strings.ToLower(logLevel)]
	if !ok {
		minLevel = logLevels["info"]
	}

	return &FileLogger{
		file:     file,
		logger:   log.New(file, "", log.LstdFlags),
		minLevel: minLevel,
	}, nil
}

// Debug логирует отладочное сообщение
func (l *FileLogger) Debug(format string, args ...interface{}) {
	l.writeLog("debug", "DEBUG", format, args...)
}

// Info логирует информационное сообщение
func (l *FileLogger) Info(format string, args ...interface{}) {
	l.writeLog("info", "INFO", format, args...)
}

// Warning логирует предупреждение
func (l *FileLogger) Warning(format string, args ...interface{}) {
	l.writeLog("warning", "WARNING", format, args...)
}

// Error логирует ошибку
func (l *FileLogger) Error(format string, args ...interface{}) {
	l.writeLog("error", "ERROR", format, args...)
}

// Success логирует успешное выполнение
func (l *FileLogger) Success(format string, args ...interface{}) {
	l.writeLog("info", "SUCCESS", format, args...)
}

// Close закрывает логгер
func (l *FileLogger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// writeLog записывает лог, если уровень сообщения достаточно важен
func (l *FileLogger) writeLog(level, tag, format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	if logLevels[level] < l.minLevel {
		return
	}
	l.logger.Printf("[%s] %s", tag, fmt.Sprintf(format, args...))
}
