package processor

import (
	"encoding/json"
	"fmt"
)

// Encode объединяет два этапа обработки:
// 1. Сериализация значения в JSON
// 2. Сжатие результата snappy
func Encode(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации: %w", err)
	}
	return Compress(data), nil
}

// Decode выполняет обратный процесс: распаковка, затем разбор JSON в v
func Decode(raw []byte, v interface{}) error {
	data, err := Decompress(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("ошибка разбора JSON: %w", err)
	}
	return nil
}

// ReadArtifact возвращает содержимое артефакта, распаковывая его, если путь оканчивается на .sz
func ReadArtifact(path string, data []byte) ([]byte, error) {
	if !IsCompressedPath(path) {
		return data, nil
	}
	return Decompress(data)
}
