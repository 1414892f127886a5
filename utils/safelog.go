// utils/safelog.go
// ============================================================================
// SAFE LOGGING - masks personal and financial data in production
// ============================================================================

package utils

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
)

var (
	// IsProduction controls masking. In release mode amounts, emails and
	// ids never reach the logs in clear.
	IsProduction = os.Getenv("GIN_MODE") == "release" ||
		os.Getenv("ENVIRONMENT") == "production"

	LogLevel = getLogLevel()
)

const (
	LogLevelDebug = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func getLogLevel() int {
	level := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	switch level {
	case "DEBUG":
		return LogLevelDebug
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// Decimal numbers that look like monetary amounts
	amountRegex = regexp.MustCompile(`\b\d{2,}([.,]\d{1,2})?\b`)

	uuidRegex = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// MaskString masks sensitive data in a string when running in production.
func MaskString(input string) string {
	if !IsProduction {
		return input
	}

	result := input
	result = emailRegex.ReplaceAllString(result, "***@***.***")
	result = uuidRegex.ReplaceAllStringFunc(result, func(id string) string {
		return id[:8] + "-****"
	})
	result = amountRegex.ReplaceAllString(result, "***")

	return result
}

func logf(level int, prefix, format string, args ...interface{}) {
	if level < LogLevel {
		return
	}
	log.Printf("%s %s", prefix, MaskString(fmt.Sprintf(format, args...)))
}

func Debugf(format string, args ...interface{}) {
	logf(LogLevelDebug, "🔍", format, args...)
}

func Infof(format string, args ...interface{}) {
	logf(LogLevelInfo, "✅", format, args...)
}

func Warnf(format string, args ...interface{}) {
	logf(LogLevelWarn, "⚠️", format, args...)
}

func Errorf(format string, args ...interface{}) {
	logf(LogLevelError, "❌", format, args...)
}
