// Package logger writes one JSON object per line for every application event.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LogLevel string

const (
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// UserIDKey is the fiber.Ctx local holding the authenticated user's id as a string.
const UserIDKey = "userID"

type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     LogLevel               `json:"level"`
	UserID    *string                `json:"user_id,omitempty"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

var (
	mu  sync.Mutex
	out io.Writer
)

// Init sends log lines to stdout.
func Init() {
	SetOutput(os.Stdout)
}

// SetOutput redirects log lines to w. A nil writer disables logging.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

func emit(entry LogEntry) {
	entry.Timestamp = time.Now().UTC()
	line, err := json.Marshal(entry)
	if err != nil {
		line, _ = json.Marshal(LogEntry{
			Timestamp: entry.Timestamp,
			Level:     entry.Level,
			Action:    entry.Action,
			Error:     "unserializable log details",
		})
	}
	line = append(line, '\n')

	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		_, _ = out.Write(line)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func Info(action string, details map[string]interface{}) {
	emit(LogEntry{Level: LevelInfo, Action: action, Details: details})
}

func InfoWithUser(userID string, action string, details map[string]interface{}) {
	emit(LogEntry{Level: LevelInfo, UserID: &userID, Action: action, Details: details})
}

func Warn(action string, details map[string]interface{}) {
	emit(LogEntry{Level: LevelWarn, Action: action, Details: details})
}

func WarnWithUser(userID string, action string, details map[string]interface{}) {
	emit(LogEntry{Level: LevelWarn, UserID: &userID, Action: action, Details: details})
}

func Error(action string, err error, details map[string]interface{}) {
	emit(LogEntry{Level: LevelError, Action: action, Details: details, Error: errString(err)})
}

func ErrorWithUser(userID string, action string, err error, details map[string]interface{}) {
	emit(LogEntry{Level: LevelError, UserID: &userID, Action: action, Details: details, Error: errString(err)})
}

func GetUserIDFromContext(c *fiber.Ctx) *string {
	if id, ok := c.Locals(UserIDKey).(string); ok {
		return &id
	}
	return nil
}

var redactedKeys = map[string]struct{}{
	"password":        {},
	"currentPassword": {},
	"newPassword":     {},
	"token":           {},
	"linkToken":       {},
	"secret":          {},
}

func redactSensitiveFields(body map[string]interface{}) {
	for key := range body {
		if _, sensitive := redactedKeys[key]; sensitive {
			body[key] = "[REDACTED]"
		}
	}
}

const (
	maxSummarizedBody = 1024
	maxSummaryLen     = 200
)

// GetRequestBodySummary renders a short, redacted description of the request body.
func GetRequestBodySummary(c *fiber.Ctx) string {
	body := c.Body()
	switch {
	case len(body) == 0:
		return "empty"
	case len(body) > maxSummarizedBody:
		return fmt.Sprintf("large (%d bytes)", len(body))
	}

	var fields map[string]interface{}
	if json.Unmarshal(body, &fields) != nil {
		return fmt.Sprintf("binary (%d bytes)", len(body))
	}
	redactSensitiveFields(fields)
	summary, err := json.Marshal(fields)
	if err != nil {
		return fmt.Sprintf("binary (%d bytes)", len(body))
	}
	if len(summary) > maxSummaryLen {
		return string(summary[:maxSummaryLen]) + "..."
	}
	return string(summary)
}

func GetResponseSizeSummary(c *fiber.Ctx) string {
	size := len(c.Response().Body())
	switch {
	case size == 0:
		return "empty"
	case size > maxSummarizedBody:
		return fmt.Sprintf("large (%d bytes)", size)
	default:
		return fmt.Sprintf("small (%d bytes)", size)
	}
}

func GenerateRequestID() string {
	return uuid.New().String()
}
