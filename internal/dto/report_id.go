package dto

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"
)

const reportIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ReportIDPattern matches ids of the form CR-<year>-<month>-<4 chars>.
var ReportIDPattern = regexp.MustCompile(`^CR-\d{4}-\d{2}-[A-Z0-9]{4}$`)

// NewReportID generates an id for a report filed at the given time.
func NewReportID(at time.Time) string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = reportIDAlphabet[rand.Intn(len(reportIDAlphabet))]
	}
	return FormatReportID(at, string(suffix))
}

func FormatReportID(at time.Time, suffix string) string {
	return fmt.Sprintf("CR-%04d-%02d-%s", at.Year(), int(at.Month()), suffix)
}
