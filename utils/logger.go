package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// AppLogger представляет логгер сервиса с уровнями INFO/ERROR/DEBUG
type AppLogger struct {
	infoLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
	isVerbose   bool
	file        *os.File
}

// NewAppLogger создает логгер, который пишет в стандартный вывод и,
// если задан logFile, дополнительно в файл. Значение "auto" дает
// файл вида harga_pangan_YYYY-MM-DD.log в текущей директории.
func NewAppLogger(verbose bool, logFile string) (*AppLogger, error) {
	if logFile == "" {
		return NewAppLoggerWriter(os.Stdout, verbose), nil
	}

	if logFile == "auto" {
		logFile = fmt.Sprintf("harga_pangan_%s.log", time.Now().Format("2006-01-02"))
	}

	// Создаем или открываем лог-файл для записи
	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть или создать файл лога: %w", err)
	}

	logger := NewAppLoggerWriter(io.MultiWriter(os.Stdout, file), verbose)
	logger.file = file
	return logger, nil
}

// NewAppLoggerWriter создает логгер поверх произвольного writer
func NewAppLoggerWriter(w io.Writer, verbose bool) *AppLogger {
	flags := log.Ldate | log.Ltime
	return &AppLogger{
		infoLogger:  log.New(w, "INFO: ", flags),
		errorLogger: log.New(w, "ERROR: ", flags),
		debugLogger: log.New(w, "DEBUG: ", flags),
		isVerbose:   verbose,
	}
}

// NewDiscardLogger логгер, который ничего не пишет (используется в тестах и CLI)
func NewDiscardLogger() *AppLogger {
	return NewAppLoggerWriter(io.Discard, false)
}

// Info логирует информационное сообщение
func (l *AppLogger) Info(format string, v ...interface{}) {
	l.infoLogger.Output(2, fmt.Sprintf(format, v...))
}

// Error логирует сообщение об ошибке
func (l *AppLogger) Error(format string, v ...interface{}) {
	l.errorLogger.Output(2, fmt.Sprintf(format, v...))
}

// Debug логирует отладочное сообщение (только если включен verbose режим)
func (l *AppLogger) Debug(format string, v ...interface{}) {
	if !l.isVerbose {
		return
	}
	l.debugLogger.Output(2, fmt.Sprintf(format, v...))
}

// IsVerbose сообщает, включен ли отладочный режим
func (l *AppLogger) IsVerbose() bool {
	return l.isVerbose
}

// LogDuration логирует завершение операции с ее длительностью
func (l *AppLogger) LogDuration(operation string, startTime time.Time) {
	l.Info("%s завершено. Длительность: %v", operation, time.Since(startTime))
}

// Close закрывает файл лога, если он был открыт
func (l *AppLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
