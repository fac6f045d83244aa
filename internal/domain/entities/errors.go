package entities

import "errors"

// Доменные ошибки
var (
	ErrInvalidPreset      = errors.New("неизвестный профиль сжатия")
	ErrInvalidWritePolicy = errors.New("неизвестная политика записи")
	ErrInvalidDPI         = errors.New("разрешение должно быть от 72 до 300 dpi")
	ErrInvalidJPEGQuality = errors.New("качество JPEG должно быть от 30 до 90")
	ErrInvalidWorkerCount = errors.New("количество воркеров должно быть не меньше 1")
	ErrInvalidTimeout     = errors.New("таймаут должен быть не меньше 1 секунды")
	ErrFileNotFound       = errors.New("файл не найден")
	ErrNoFilesFound       = errors.New("файлы для обработки не найдены")
	ErrCompressionFailed  = errors.New("ошибка сжатия файла")
	ErrLicenseRequired    = errors.New("для UniPDF требуется лицензионный ключ")
)
