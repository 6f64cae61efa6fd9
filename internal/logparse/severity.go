// Package logparse derives display hints, such as severity, from decoded
// log records.
package logparse

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tinytelemetry/logview/internal/model"
)

// Severity levels in ascending order.
const (
	Trace = "TRACE"
	Debug = "DEBUG"
	Info  = "INFO"
	Warn  = "WARN"
	Error = "ERROR"
	Fatal = "FATAL"
)

// severityKeys are the attribute names checked for an explicit level, in order.
var severityKeys = []string{"level", "severity", "lvl", "loglevel", "severity_text"}

// SeverityRegex matches common severity levels in log text.
var SeverityRegex = regexp.MustCompile(`(?i)\b(TRACE|DEBUG|INFO|WARN|WARNING|ERROR|FATAL|CRITICAL)\b`)

// RecordSeverity returns the severity of a record: an explicit level
// attribute (string or pino-style number) wins, then the message text.
func RecordSeverity(r model.LogRecord) string {
	for _, key := range severityKeys {
		raw, ok := r.Attr(key)
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return NormalizeSeverity(s)
		}
		var n int
		if err := json.Unmarshal(raw, &n); err == nil {
			return PinoLevelToString(n)
		}
	}
	return ExtractSeverityFromText(r.Message)
}

// NormalizeSeverity converts various severity level formats to consistent all caps short forms.
func NormalizeSeverity(severity string) string {
	normalized := strings.ToUpper(strings.TrimSpace(severity))

	switch normalized {
	case "TRACE", "TRAC", "TRC":
		return Trace
	case "DEBUG", "DEBU", "DBG", "DEB":
		return Debug
	case "INFO", "INFORMATION", "INF":
		return Info
	case "WARN", "WARNING", "WRNG", "WRN":
		return Warn
	case "ERROR", "ERR", "ERRO":
		return Error
	case "FATAL", "FATL", "FTL", "CRITICAL", "CRIT", "CRT", "PANIC", "PNC":
		return Fatal
	}

	if len(normalized) >= 4 {
		switch normalized[:4] {
		case "INFO":
			return Info
		case "WARN":
			return Warn
		case "ERRO":
			return Error
		case "DEBU":
			return Debug
		case "TRAC":
			return Trace
		case "FATA", "CRIT":
			return Fatal
		}
	}
	return Info
}

// ExtractSeverityFromText extracts severity level from log message text.
func ExtractSeverityFromText(message string) string {
	matches := SeverityRegex.FindStringSubmatch(message)
	if len(matches) > 1 {
		return NormalizeSeverity(matches[1])
	}
	return Info
}

// PinoLevelToString converts pino/bunyan numeric levels to strings.
func PinoLevelToString(level int) string {
	switch {
	case level < 20:
		return Trace
	case level < 30:
		return Debug
	case level < 40:
		return Info
	case level < 50:
		return Warn
	case level < 60:
		return Error
	default:
		return Fatal
	}
}
