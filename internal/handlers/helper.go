package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	formatJSON = "json"
	formatXLSX = "xlsx"
	formatCSV  = "csv"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv"
)

// requestedFormat reads ?format=, defaulting to json.
func requestedFormat(c *gin.Context) string {
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	if format == "" {
		return formatJSON
	}
	return format
}

// nowOr returns the caller-supplied reference time, or the wall clock.
func nowOr(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(200, contentType, data)
}
