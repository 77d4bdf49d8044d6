package service

import (
	"io"
	"log/slog"
	"slices"
	"sync"
)

type sentEvent struct {
	Handles []string
	Action  string
	Payload any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (that *recordingNotifier) Notify(handles []string, action string, payload any) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, sentEvent{Handles: slices.Clone(handles), Action: action, Payload: payload})
}

func (that *recordingNotifier) Events() []sentEvent {
	that.mu.Lock()
	defer that.mu.Unlock()

	return slices.Clone(that.events)
}

func (that *recordingNotifier) Actions() []string {
	var actions []string
	for _, event := range that.Events() {
		actions = append(actions, event.Action)
	}

	return actions
}

func (that *recordingNotifier) Count(action string) int {
	count := 0
	for _, event := range that.Events() {
		if event.Action == action {
			count++
		}
	}

	return count
}

func (that *recordingNotifier) Last(action string) (sentEvent, bool) {
	events := that.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Action == action {
			return events[i], true
		}
	}

	return sentEvent{}, false
}

// For returns the events delivered to the handle.
func (that *recordingNotifier) For(handle string) []sentEvent {
	var events []sentEvent
	for _, event := range that.Events() {
		if slices.Contains(event.Handles, handle) {
			events = append(events, event)
		}
	}

	return events
}

func (that *recordingNotifier) Clear() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
