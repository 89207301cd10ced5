package report

import "time"

const DefaultTransitionTimeout = 10 * time.Second

// Options задаёт общие параметры операций над отчётами.
type Options struct {
	// Timeout ограничивает время одной операции перехода, включая чтение и запись.
	Timeout time.Duration
	Clock   func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTransitionTimeout
	}
	if o.Clock == nil {
		o.Clock = func() time.Time { return time.Now().UTC() }
	}
	return o
}
