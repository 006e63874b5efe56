package buildpipeline

import "sync"

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

// RecordingSink keeps every event; tests and the plain-text reporter use it.
type RecordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *RecordingSink) OnEvent(evt Event) {
	s.mu.Lock()
	s.events = append(s.events, evt)
	s.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (s *RecordingSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
