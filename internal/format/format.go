package format

import (
	"math"
	"strconv"
	"time"
)

const (
	DefaultDecimals = 2

	dateLayout = "January 2, 2006"
	unitBase   = 1024
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count in base-1024 units rounded to decimals
// places, dropping trailing zeros: 1536 with one decimal is "1.5 KB".
func FormatBytes(bytes int64, decimals int) string {
	if bytes == 0 {
		return "0 Bytes"
	}
	if decimals < 0 {
		decimals = 0
	}

	i := 0
	for abs := math.Abs(float64(bytes)); abs >= unitBase && i < len(byteUnits)-1; abs /= unitBase {
		i++
	}

	v := float64(bytes) / math.Pow(unitBase, float64(i))
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		rounded = v
	}

	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + byteUnits[i]
}

// FormatDate renders seconds since the epoch as a long-form UTC date such as
// "March 8, 2025".
func FormatDate(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(dateLayout)
}
