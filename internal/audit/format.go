package audit

import (
	"math"
	"strconv"
	"strings"
)

// UnknownExtension is the extension sentinel for names without a suffix.
const UnknownExtension = "Unknown"

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders bytes with base-1024 units rounded to two decimals,
// using the largest unit whose scaled value is at least 1. GB is the largest
// unit; zero renders as "0 Bytes".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 " + sizeUnits[0]
	}
	value := float64(bytes)
	unit := 0
	for unit < len(sizeUnits)-1 && value >= 1024 {
		value /= 1024
		unit++
	}
	rounded := math.Round(value*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[unit]
}

// ExtensionOf returns the lower-cased text after the final '.' of name, or
// UnknownExtension when there is no '.' or nothing follows it.
func ExtensionOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return UnknownExtension
	}
	return strings.ToLower(name[idx+1:])
}

var fileTypes = map[string]string{
	"pdf":  "PDF Document",
	"doc":  "Word Document",
	"docx": "Word Document",
	"xls":  "Excel Spreadsheet",
	"xlsx": "Excel Spreadsheet",
	"txt":  "Text File",
	"csv":  "CSV Data",
	"jpg":  "Image (JPEG)",
	"jpeg": "Image (JPEG)",
	"png":  "Image (PNG)",
	"gif":  "Image (GIF)",
	"zip":  "Archive",
	"rar":  "Archive",
	"7z":   "Archive",
}

// TypeOf classifies a file name by extension. Unlisted extensions map to
// "<EXT> File", so extensionless names become "UNKNOWN File".
func TypeOf(name string) string {
	ext := strings.ToLower(ExtensionOf(name))
	if label, ok := fileTypes[ext]; ok {
		return label
	}
	return strings.ToUpper(ext) + " File"
}
