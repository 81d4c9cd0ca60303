package notify

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrQueueFull is reported when a notification is dropped because the
// dispatch queue is at capacity.
var ErrQueueFull = errors.New("notification queue full")

// ErrClosed is reported when a notification arrives after the dispatcher
// has shut down.
var ErrClosed = errors.New("notification dispatcher closed")

// Result reports the outcome of one delivery attempt.
type Result struct {
	Notification Notification
	Err          error
}

// Dispatcher delivers notifications on a background goroutine. Enqueue never
// returns an error: the triggering workflow has already committed and must
// not be rolled back or blocked by email delivery. Failures are logged and
// reported through the optional OnResult callback.
type Dispatcher struct {
	mailer   Mailer
	queue    chan Notification
	onResult func(Result)
	timeout  time.Duration

	mu     sync.Mutex
	closed bool

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithResultCallback registers a callback invoked after every delivery
// attempt, on the dispatcher goroutine.
func WithResultCallback(fn func(Result)) DispatcherOption {
	return func(d *Dispatcher) { d.onResult = fn }
}

// WithQueueSize overrides the default queue capacity.
func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) { d.queue = make(chan Notification, n) }
}

// NewDispatcher starts the delivery worker.
func NewDispatcher(mailer Mailer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		mailer:  mailer,
		queue:   make(chan Notification, 64),
		timeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.wg.Add(1)
	go d.run()

	return d
}

// Enqueue hands a notification to the worker. When the queue is full or the
// dispatcher has been closed the notification is dropped with a log line
// rather than blocking or panicking the caller.
func (d *Dispatcher) Enqueue(n Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		log.Printf("notify: dispatcher closed, dropping %s notification", n.Kind)
		d.report(Result{Notification: n, Err: ErrClosed})
		return
	}

	select {
	case d.queue <- n:
	default:
		log.Printf("notify: queue full, dropping %s notification", n.Kind)
		d.report(Result{Notification: n, Err: ErrQueueFull})
	}
}

// Close stops accepting notifications, drains the queue, and waits for the
// worker to finish.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for n := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.mailer.Send(ctx, n.Email)
		cancel()

		if err != nil {
			log.Printf("notify: %s delivery failed: %v", n.Kind, err)
		}
		d.report(Result{Notification: n, Err: err})
	}
}

func (d *Dispatcher) report(r Result) {
	if d.onResult != nil {
		d.onResult(r)
	}
}
