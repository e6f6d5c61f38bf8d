package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"pdfdesk/internal/core/upload"
)

// eventSink carries upload-started, navigation and alert events raised by
// background work into the Update loop. It implements upload.Navigator and upload.Notifier.
type eventSink struct {
	ch   chan tea.Msg
	done <-chan struct{}
}

func newEventSink(done <-chan struct{}) *eventSink {
	return &eventSink{ch: make(chan tea.Msg, 8), done: done}
}

// eventMsg wraps a message received from the sink so Update knows to
// listen again after handling it.
type eventMsg struct{ msg tea.Msg }

func (s *eventSink) Navigate(path string) { s.send(navigateMsg{path: path}) }
func (s *eventSink) Notify(text string)   { s.send(alertMsg{text: text}) }

// Started reports the file that is actually being uploaded.
func (s *eventSink) Started(f upload.SelectedFile) { s.send(uploadStartedMsg{name: f.Name}) }

func (s *eventSink) send(msg tea.Msg) {
	select {
	case s.ch <- msg:
	case <-s.done:
	}
}

func (s *eventSink) wait() tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case msg := <-s.ch:
			return eventMsg{msg: msg}
		case <-s.done:
			return nil
		}
	}
}
