package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ********************************************************
// ********* LOGGING **************************************
// ********************************************************

var (
	defaultLogger *Logger
	logFile       *os.File
	mu            sync.Mutex
)

type LogLevel int

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorOrange  = "\033[38;5;208m"
)

const (
	DEBUG LogLevel = iota
	INFO
	INFORM
	HIGHLIGHT
	WARN
	ERROR
	FATAL
)

// Logger writes levelled, coloured lines prefixed with the caller's file and line.
// Components receive a *Logger at construction rather than reaching for the default.
type Logger struct {
	infoLogger  *log.Logger
	errorLogger *log.Logger
	level       LogLevel
	colour      bool
}

func init() {
	defaultLogger = NewLogger(INFO)
}

// NewLogger returns a console logger: info and below to stdout, errors to stderr
func NewLogger(level LogLevel) *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stdout, "", 0),
		errorLogger: log.New(os.Stderr, "", 0),
		level:       level,
		colour:      true,
	}
}

// New returns a logger writing every level to w without colour codes.
// Pass io.Discard to silence a component.
func New(level LogLevel, w io.Writer) *Logger {
	return &Logger{
		infoLogger:  log.New(w, "", 0),
		errorLogger: log.New(w, "", 0),
		level:       level,
	}
}

// Discard is a logger that drops everything
func Discard() *Logger {
	return New(FATAL+1, io.Discard)
}

// Default returns the process logger used by the package level helpers
func Default() *Logger {
	mu.Lock()
	defer mu.Unlock()
	return defaultLogger
}

// SetLevel changes the minimum level the logger emits
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

// SetShowDateTime toggles date/time prefixes on the logger
func (l *Logger) SetShowDateTime(value bool) {
	flags := 0
	if value {
		flags = log.Ldate | log.Ltime
	}
	l.infoLogger.SetFlags(flags)
	l.errorLogger.SetFlags(flags)
}

// SetLogOutput sets the output destination for the default logger
// 'c' for console, 'f' for file, 'b' for both
func SetLogOutput(outputType rune, path string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	var infoWriter, errorWriter io.Writer
	switch outputType {
	case 'c':
		infoWriter = os.Stdout
		errorWriter = os.Stderr
	case 'f', 'b':
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		infoWriter = f
		errorWriter = f
		if outputType == 'b' {
			infoWriter = io.MultiWriter(os.Stdout, f)
			errorWriter = io.MultiWriter(os.Stderr, f)
		}
	default:
		return fmt.Errorf("invalid log output type: %c", outputType)
	}

	flags := defaultLogger.infoLogger.Flags()
	defaultLogger.infoLogger = log.New(infoWriter, "", flags)
	defaultLogger.errorLogger = log.New(errorWriter, "", flags)
	defaultLogger.colour = outputType == 'c'
	return nil
}

func (l *Logger) log(level LogLevel, format string, v ...any) {
	if level < l.level {
		return
	}

	// skip log() and the exported wrapper
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
		line = 0
	}
	file = filepath.Base(file)

	var msg string
	var jsonObjects []string

	if len(v) > 0 {
		processedArgs, jsonStrings := processArgs(v...)
		jsonObjects = jsonStrings
		if len(processedArgs) > 0 {
			msg = fmt.Sprintf(format+" %s", strings.Join(processedArgs, " "))
		} else {
			msg = format
		}
	} else {
		msg = format
	}

	colorCode, reset := "", ""
	if l.colour {
		colorCode, reset = level.color(), colorReset
	}

	out := l.infoLogger
	if level >= ERROR {
		out = l.errorLogger
	}
	out.Println(fmt.Sprintf("[%s] %s:%d: %s%s%s", level.String(), file, line, colorCode, msg, reset))
	for _, jsonObj := range jsonObjects {
		out.Println(fmt.Sprintf("[%s] %s:%d: %s%s%s", level.String(), file, line, colorCode, jsonObj, reset))
	}
}

func (l LogLevel) color() string {
	switch l {
	case DEBUG:
		return colorBlue
	case INFO:
		return colorGreen
	case INFORM:
		return colorMagenta
	case HIGHLIGHT:
		return colorCyan
	case WARN:
		return colorYellow
	case ERROR:
		return colorOrange
	case FATAL:
		return colorRed
	default:
		return colorReset
	}
}

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case INFORM:
		return "INFORM"
	case HIGHLIGHT:
		return "HIGHLIGHT"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string such as "debug" or "warn" to a LogLevel.
// Unknown values fall back to INFO.
func ParseLevel(value string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

// processArgs processes arguments, converting non-primitives to JSON
// Returns a slice of string representations for primitive types and a slice of JSON strings for complex types
func processArgs(args ...any) ([]string, []string) {
	if len(args) == 0 {
		return nil, nil
	}

	var primitives []string
	var jsonObjects []string

	for _, arg := range args {
		if isPrimitive(arg) {
			switch v := arg.(type) {
			case float32:
				primitives = append(primitives, fmt.Sprintf("%.2f", v))
			case float64:
				primitives = append(primitives, fmt.Sprintf("%.2f", v))
			case int:
				primitives = append(primitives, fmt.Sprintf("%d", v))
			case string:
				primitives = append(primitives, v)
			case error:
				primitives = append(primitives, v.Error())
			case nil:
				primitives = append(primitives, "nil")
			default:
				primitives = append(primitives, fmt.Sprintf("%v", v))
			}
			continue
		}
		jsonBytes, err := json.MarshalIndent(arg, "", "  ")
		if err != nil {
			primitives = append(primitives, fmt.Sprintf("%v", arg))
			continue
		}
		primitives = append(primitives, fmt.Sprintf("[Object of type %s]", reflect.TypeOf(arg)))
		jsonObjects = append(jsonObjects, string(jsonBytes))
	}
	return primitives, jsonObjects
}

// isPrimitive checks if a value is a primitive type
func isPrimitive(v any) bool {
	if v == nil {
		return true
	}

	switch v.(type) {
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, error:
		return true
	default:
		return false
	}
}

func (l *Logger) Debug(format string, v ...any)     { l.log(DEBUG, format, v...) }
func (l *Logger) Info(format string, v ...any)      { l.log(INFO, format, v...) }
func (l *Logger) Inform(format string, v ...any)    { l.log(INFORM, format, v...) }
func (l *Logger) Highlight(format string, v ...any) { l.log(HIGHLIGHT, format, v...) }
func (l *Logger) Warn(format string, v ...any)      { l.log(WARN, format, v...) }
func (l *Logger) Error(format string, v ...any)     { l.log(ERROR, format, v...) }

// Convenience methods using the default logger
func Debug(format string, v ...any) {
	Default().log(DEBUG, format, v...)
}

func Info(format string, v ...any) {
	Default().log(INFO, format, v...)
}

func Inform(format string, v ...any) {
	Default().log(INFORM, format, v...)
}

func Highlight(format string, v ...any) {
	Default().log(HIGHLIGHT, format, v...)
}

func Warn(format string, v ...any) {
	Default().log(WARN, format, v...)
}

func Error(format string, v ...any) {
	Default().log(ERROR, format, v...)
}

func Fatal(format string, v ...any) {
	Default().log(FATAL, format, v...)
	os.Exit(1)
}
