package core

import "fmt"

var sizeUnits = [...]string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with binary (1024) units and two decimals.
// The unit steps up once the value reaches 1024, and stops at TB.
// Examples: 0 -> "0.00 B", 1500 -> "1.46 KB", 1048576 -> "1.00 MB".
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", size, sizeUnits[unit])
}
