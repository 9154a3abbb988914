package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"jmssh/backend/internal/types"
)

// Log 把每次 connect 的开始和结束追加写入 access.log。nil 的 *Log 什么也不做。
type Log struct {
	path  string
	nowFn func() time.Time
	idFn  func() string
}

// Session 关联同一次连接的 started / finished 两行
type Session struct {
	ID     string
	Target types.ConnectHop
	Via    []string
}

// New 创建写入 path 的审计日志
func New(path string) *Log {
	return &Log{
		path:  path,
		nowFn: time.Now,
		idFn:  func() string { return uuid.NewString() },
	}
}

// Path 返回日志文件路径
func (l *Log) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// ConnectStart 在启动 ssh 之前调用
func (l *Log) ConnectStart(plan types.ConnectPlan) Session {
	target, _ := plan.Target()
	sess := Session{Target: target}
	for _, h := range plan.Bastions() {
		sess.Via = append(sess.Via, h.Label)
	}
	if l == nil {
		return sess
	}
	sess.ID = l.idFn()
	l.writeLine(l.prefix(sess) + " status=started")
	return sess
}

// ConnectFinish 在 ssh 退出（或无法启动）后调用。code 为子进程退出码，signal 非空表示被信号终止。
func (l *Log) ConnectFinish(sess Session, code int, signal string, launchErr error) {
	if l == nil {
		return
	}
	line := l.prefix(sess)
	switch {
	case launchErr != nil:
		line += " status=failure err=" + escape(launchErr.Error())
	case signal != "":
		line += " status=failure signal=" + escape(signal)
	case code != 0:
		line += fmt.Sprintf(" status=failure exit=%d", code)
	default:
		line += " status=success"
	}
	l.writeLine(line)
}

func (l *Log) prefix(sess Session) string {
	ts := l.nowFn().UTC().Format(time.RFC3339)
	t := sess.Target
	line := fmt.Sprintf("%s connect session=%s id=%d name=%s host=%s port=%d user=%s",
		ts, sess.ID, t.ID, escape(t.Label), escape(t.Host), t.Port, escape(t.User))
	if len(sess.Via) > 0 {
		line += " via=" + escape(strings.Join(sess.Via, ","))
	}
	return line
}

// writeLine 追加一行并立即 Sync，写入失败只会丢失审计记录，不影响连接
func (l *Log) writeLine(line string) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return
	}
	_, _ = f.WriteString(line + "\n")
	_ = f.Sync()
	_ = f.Close()
}

func escape(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "\t", "_")
	if strings.ContainsAny(s, "\n\"\\") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
