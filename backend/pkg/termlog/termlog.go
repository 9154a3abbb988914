// Package termlog 把 loggo 日志以 "[jmssh] LEVEL message" 的形式输出到终端，
// 并按级别着色。
package termlog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/juju/ansiterm"
	"github.com/juju/loggo"
	"golang.org/x/term"
)

// Prefix 是每行日志的前缀
const Prefix = "[jmssh]"

// SeverityColor 是各级别使用的颜色
var SeverityColor = map[loggo.Level]*ansiterm.Context{
	loggo.TRACE:   ansiterm.Foreground(ansiterm.Default),
	loggo.DEBUG:   ansiterm.Foreground(ansiterm.Green),
	loggo.INFO:    ansiterm.Foreground(ansiterm.BrightBlue),
	loggo.WARNING: ansiterm.Foreground(ansiterm.Yellow),
	loggo.ERROR:   ansiterm.Foreground(ansiterm.BrightRed),
	loggo.CRITICAL: {
		Foreground: ansiterm.White,
		Background: ansiterm.Red,
	},
}

// Writer 实现 loggo.Writer
type Writer struct {
	out *ansiterm.Writer
}

// NewWriter 创建一个终端日志 Writer，color 为 false 时不输出颜色控制符
func NewWriter(out io.Writer, color bool) *Writer {
	w := ansiterm.NewWriter(out)
	w.SetColorCapable(color)
	return &Writer{out: w}
}

// Write 实现 loggo.Writer
func (w *Writer) Write(entry loggo.Entry) {
	fmt.Fprintf(w.out, "%s ", Prefix)
	if ctx, ok := SeverityColor[entry.Level]; ok {
		ctx.Fprintf(w.out, "%s", entry.Level)
	} else {
		fmt.Fprintf(w.out, "%s", entry.Level)
	}
	fmt.Fprintf(w.out, " %s\n", strings.TrimRight(entry.Message, "\n"))
}

// ColorEnabled 判断是否应该输出颜色：f 是终端且没有设置 NO_COLOR
func ColorEnabled(f *os.File, noColor bool) bool {
	if noColor || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// FileFormatter 是写入日志文件时使用的格式，带时间戳和模块名
func FileFormatter(entry loggo.Entry) string {
	ts := entry.Timestamp.Format("2006-01-02 15:04:05")
	return fmt.Sprintf("%s %s %s %s", ts, entry.Level, entry.Module, entry.Message)
}

// Setup 用终端 Writer 替换 loggo 的默认 Writer 并设置根日志级别。
// logFile 非空时额外把日志追加到该文件，返回的 io.Closer 需要在退出时关闭。
func Setup(stderr *os.File, noColor bool, level string, logFile string) (io.Closer, error) {
	lvl, ok := loggo.ParseLevel(level)
	if !ok {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	if _, err := loggo.ReplaceDefaultWriter(NewWriter(stderr, ColorEnabled(stderr, noColor))); err != nil {
		return nil, fmt.Errorf("replace default log writer: %w", err)
	}
	loggo.GetLogger("").SetLogLevel(lvl)

	if logFile == "" {
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	_, _ = loggo.RemoveWriter("file")
	if err := loggo.RegisterWriter("file", loggo.NewSimpleWriter(f, FileFormatter)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("register log file writer: %w", err)
	}
	return f, nil
}
