package processor

import (
	"fmt"
	"strings"

	"github.com/golang/snappy"
)

// CompressedExt расширение файлов, сжатых snappy
const CompressedExt = ".sz"

// Compress сжимает данные snappy
func Compress(data []byte) []byte {
	return snappy.Encode(nil, data)
}

// Decompress распаковывает данные, сжатые Compress
func Decompress(data []byte) ([]byte, error) {
	decompressed, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки: %w", err)
	}
	return decompressed, nil
}

// IsCompressedPath сообщает, сжат ли файл (по расширению)
func IsCompressedPath(path string) bool {
	return strings.HasSuffix(path, CompressedExt)
}
