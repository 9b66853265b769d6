package engine

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/peekdb/peek/internal/errs"
)

// FileKind enumerates the supported source file families.
type FileKind int

const (
	KindUnknown FileKind = iota
	KindParquet
	KindCSV
	KindJSONLines
	KindJSON
	KindArrow
	KindWorkbook
)

func (k FileKind) String() string {
	switch k {
	case KindParquet:
		return "parquet"
	case KindCSV:
		return "csv"
	case KindJSONLines:
		return "jsonl"
	case KindJSON:
		return "json"
	case KindArrow:
		return "arrow"
	case KindWorkbook:
		return "workbook"
	default:
		return "unknown"
	}
}

// FileSpec is the result of file-kind detection.
type FileSpec struct {
	Kind       FileKind
	Compressed bool
	Extension  string // inner extension, lowercased, without dot
}

var gzipMagic = []byte{0x1f, 0x8b}

// DetectFileKind classifies a file by extension, unwrapping a trailing .gz
// and falling back to the gzip magic header for files compressed without
// the suffix.
func DetectFileKind(path string) (FileSpec, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	compressed := false
	if ext == "gz" {
		compressed = true
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(stem), "."))
	}

	var kind FileKind
	switch ext {
	case "parquet", "parq":
		kind = KindParquet
	case "csv", "tsv", "txt":
		kind = KindCSV
	case "jsonl", "ndjson":
		kind = KindJSONLines
	case "json":
		kind = KindJSON
	case "arrow", "feather", "ipc":
		kind = KindArrow
	case "xlsx", "xlsm", "xls":
		kind = KindWorkbook
	default:
		return FileSpec{}, errs.Newf(errs.KindScan, "unsupported file type: .%s", ext)
	}

	if !compressed {
		compressed = hasGzipMagic(path)
	}

	if compressed && (kind == KindParquet || kind == KindArrow || kind == KindWorkbook) {
		return FileSpec{}, errs.Newf(errs.KindScan, "compressed %s files are not supported", kind)
	}

	return FileSpec{Kind: kind, Compressed: compressed, Extension: ext}, nil
}

func hasGzipMagic(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 2)
	n, err := f.Read(buf)
	return err == nil && n == 2 && buf[0] == gzipMagic[0] && buf[1] == gzipMagic[1]
}
