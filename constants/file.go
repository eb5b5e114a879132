package constants

import "strings"

// Extraction methods recorded on extract_jobs.method.
const (
	MethodPDFText  = "pdf-text"
	MethodPDFOCR   = "pdf-ocr"
	MethodDocIntel = "docintel"
)

// AllowedExtensions holds the file extensions accepted for ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
