package logging

import (
    "encoding/json"
    "fmt"
    "log"
    "os"
    "strings"
    "time"
)

// Logger defines the key/value logging interface shared by all services.
type Logger interface {
    Info(msg string, keysAndValues ...interface{})
    Error(msg string, keysAndValues ...interface{})
    Debug(msg string, keysAndValues ...interface{})
    Warn(msg string, keysAndValues ...interface{})
}

// LogLevel represents different logging levels
type LogLevel int

const (
    LogLevelDebug LogLevel = iota
    LogLevelInfo
    LogLevelWarn
    LogLevelError
)

func (l LogLevel) String() string {
    switch l {
    case LogLevelDebug:
        return "DEBUG"
    case LogLevelInfo:
        return "INFO"
    case LogLevelWarn:
        return "WARN"
    case LogLevelError:
        return "ERROR"
    default:
        return "UNKNOWN"
    }
}

// ParseLevel maps LOG_LEVEL values to a level, defaulting to INFO.
func ParseLevel(s string) LogLevel {
    switch strings.ToUpper(strings.TrimSpace(s)) {
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

// ProductionLogger writes JSON lines in production and readable lines in development.
type ProductionLogger struct {
    logger     *log.Logger
    level      LogLevel
    service    string
    structured bool
    fields     []interface{}
}

// NewProductionLogger creates a structured INFO-level logger writing to stdout.
func NewProductionLogger(service string) *ProductionLogger {
    return &ProductionLogger{
        logger:     log.New(os.Stdout, "", 0),
        level:      LogLevelInfo,
        service:    service,
        structured: true,
    }
}

func (p *ProductionLogger) SetLevel(level LogLevel) {
    p.level = level
}

func (p *ProductionLogger) SetStructured(structured bool) {
    p.structured = structured
}

// With returns a child logger that prefixes every entry with the given pairs,
// e.g. logger.With("chat_id", id).
func (p *ProductionLogger) With(keysAndValues ...interface{}) *ProductionLogger {
    child := *p
    child.fields = append(append([]interface{}{}, p.fields...), keysAndValues...)
    return &child
}

func (p *ProductionLogger) Info(msg string, keysAndValues ...interface{}) {
    p.log(LogLevelInfo, msg, keysAndValues...)
}

func (p *ProductionLogger) Error(msg string, keysAndValues ...interface{}) {
    p.log(LogLevelError, msg, keysAndValues...)
}

func (p *ProductionLogger) Debug(msg string, keysAndValues ...interface{}) {
    p.log(LogLevelDebug, msg, keysAndValues...)
}

func (p *ProductionLogger) Warn(msg string, keysAndValues ...interface{}) {
    p.log(LogLevelWarn, msg, keysAndValues...)
}

func (p *ProductionLogger) log(level LogLevel, msg string, keysAndValues ...interface{}) {
    if level < p.level {
        return
    }
    timestamp := time.Now().UTC().Format(time.RFC3339)
    kvs := append(append([]interface{}{}, p.fields...), keysAndValues...)

    if p.structured {
        entry := map[string]interface{}{
            "timestamp": timestamp,
            "level":     level.String(),
            "service":   p.service,
            "message":   msg,
        }
        if fields := pairs(kvs); len(fields) > 0 {
            entry["fields"] = fields
        }
        jsonBytes, err := json.Marshal(entry)
        if err != nil {
            p.logger.Printf("[%s] %s [%s] %s (unencodable fields: %v)", timestamp, level, p.service, msg, err)
            return
        }
        p.logger.Println(string(jsonBytes))
        return
    }

    var kvStr strings.Builder
    for i := 0; i+1 < len(kvs); i += 2 {
        kvStr.WriteString(fmt.Sprintf(" %v=%v", kvs[i], kvs[i+1]))
    }
    p.logger.Printf("[%s] %s [%s] %s%s", timestamp, level, p.service, msg, kvStr.String())
}

// pairs folds alternating keys and values into a map; errors are stringified.
func pairs(kvs []interface{}) map[string]interface{} {
    fields := make(map[string]interface{})
    for i := 0; i+1 < len(kvs); i += 2 {
        key, ok := kvs[i].(string)
        if !ok {
            continue
        }
        if err, isErr := kvs[i+1].(error); isErr {
            fields[key] = err.Error()
            continue
        }
        fields[key] = kvs[i+1]
    }
    return fields
}

// NoOpLogger is a logger that does nothing (for testing)
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}

// NewLogger builds a logger for a service from GO_ENV and LOG_LEVEL.
func NewLogger(service string) Logger {
    env := os.Getenv("GO_ENV")
    if env == "test" {
        return &NoOpLogger{}
    }

    logger := NewProductionLogger(service)
    logger.SetLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
    logger.SetStructured(env == "production")
    return logger
}
