// Package log implements a colorful logrus formatter shared by the CLI and
// library code.
package log

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

func init() {
	color.NoColor = false
}

// ColorfulLogFormatter is the default logger formatter: a timestamp, a
// level symbol and the message, colored by level when UseColors is set.
type ColorfulLogFormatter struct {
	UseColors bool
}

var symbolTable = map[logrus.Level]string{
	logrus.DebugLevel: "·",
	logrus.InfoLevel:  "i",
	logrus.WarnLevel:  "!",
	logrus.ErrorLevel: "x",
	logrus.FatalLevel: "X",
	logrus.PanicLevel: "X",
}

var colorTable = map[logrus.Level]func(string, ...interface{}) string{
	logrus.DebugLevel: color.CyanString,
	logrus.InfoLevel:  color.GreenString,
	logrus.WarnLevel:  color.YellowString,
	logrus.ErrorLevel: color.RedString,
	logrus.FatalLevel: color.MagentaString,
	logrus.PanicLevel: color.MagentaString,
}

func colorByLevel(level logrus.Level, msg string) string {
	fn, ok := colorTable[level]
	if !ok {
		return msg
	}
	return fn(msg)
}

func formatColored(useColors bool, buffer *bytes.Buffer, msg string, level logrus.Level) {
	if useColors {
		buffer.WriteString(colorByLevel(level, msg))
	} else {
		buffer.WriteString(msg)
	}
}

func formatFields(useColors bool, buffer *bytes.Buffer, entry *logrus.Entry) {
	if len(entry.Data) == 0 {
		return
	}
	buffer.WriteString(" [")
	idx := 0
	for key, value := range entry.Data {
		formatColored(useColors, buffer, key, entry.Level)
		buffer.WriteByte('=')
		buffer.WriteString(fmt.Sprintf("%v", value))
		if idx != len(entry.Data)-1 {
			buffer.WriteByte(' ')
		}
		idx++
	}
	buffer.WriteByte(']')
}

// Format renders a single logrus entry.
func (f *ColorfulLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	buffer := &bytes.Buffer{}
	prefix := fmt.Sprintf("%s %s", entry.Time.Format(time.RFC3339), symbolTable[entry.Level])
	if f.UseColors {
		buffer.WriteString(colorByLevel(entry.Level, prefix))
	} else {
		buffer.WriteString(prefix)
	}
	buffer.WriteByte(' ')
	buffer.WriteString(entry.Message)
	formatFields(f.UseColors, buffer, entry)
	buffer.WriteByte('\n')
	return buffer.Bytes(), nil
}

var logLevelToFunc = map[logrus.Level]func(args ...interface{}){
	logrus.DebugLevel: logrus.Debug,
	logrus.InfoLevel:  logrus.Info,
	logrus.WarnLevel:  logrus.Warn,
	logrus.ErrorLevel: logrus.Error,
	logrus.FatalLevel: logrus.Fatal,
}

// Writer adapts an io.Writer onto logrus, at a fixed severity.
type Writer struct {
	Level logrus.Level
}

func (w *Writer) Write(buf []byte) (int, error) {
	fn, ok := logLevelToFunc[w.Level]
	if !ok {
		logrus.Fatal("log.Writer: bad level")
	} else {
		fn(strings.Trim(string(buf), "\n\r "))
	}
	return len(buf), nil
}

// SetLogPath redirects logrus output to stdout, stderr, or an append-mode
// file at path.
func SetLogPath(path string) error {
	switch path {
	case "stdout":
		logrus.SetOutput(os.Stdout)
	case "stderr":
		logrus.SetOutput(os.Stderr)
	default:
		fd, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		logrus.SetOutput(fd)
	}
	return nil
}
