package mailer

import (
	"context"
	"sync"
)

// Recorder keeps sent messages in memory. Tests use it to read what would
// have been emailed; FailNext makes the next n sends fail.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	failNext int
	err      error
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext > 0 {
		r.failNext--
		return r.err
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *Recorder) FailNext(n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext = n
	r.err = err
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// To returns the messages sent to one address.
func (r *Recorder) To(addr string) []Message {
	var out []Message
	for _, m := range r.Messages() {
		if m.To == addr {
			out = append(out, m)
		}
	}
	return out
}
