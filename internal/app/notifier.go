package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"
)

const noticeBuffer = 32

// NoticeMsg carries a session notification into the update loop.
type NoticeMsg struct {
	Text string
	Err  bool
}

// Notifier forwards session notifications to the TUI. It implements
// session.Notifier and never blocks: when the buffer is full the notice is
// only logged.
type Notifier struct {
	ch chan NoticeMsg
}

// NewNotifier creates a notifier with a small buffer.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan NoticeMsg, noticeBuffer)}
}

// NotifyInfo queues an informational notice.
func (n *Notifier) NotifyInfo(msg string) { n.push(NoticeMsg{Text: msg}) }

// NotifyError queues an error notice.
func (n *Notifier) NotifyError(msg string) { n.push(NoticeMsg{Text: msg, Err: true}) }

func (n *Notifier) push(m NoticeMsg) {
	select {
	case n.ch <- m:
	default:
		glog.Warningf("[app] notice dropped: %s", m.Text)
	}
}

// Wait returns a command that delivers the next notice. The model re-arms it
// after every NoticeMsg.
func (n *Notifier) Wait() tea.Cmd {
	return func() tea.Msg {
		return <-n.ch
	}
}
