package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const (
	auditEventSignIn             = "sign_in"
	auditEventSignInToken        = "sign_in_token"
	auditEventSignOut            = "sign_out"
	auditEventSignOutAll         = "sign_out_all"
	auditEventSignOutOthers      = "sign_out_others"
	auditEventAuthorizeDenied    = "authorize_denied"
	auditEventRegistration       = "registration_started"
	auditEventAuthenticatorSetup = "authenticator_created"
	auditEventCodeVerified       = "authenticator_verified"
	auditEventContactBound       = "contact_bound"
	auditEventRecoveryStarted    = "recovery_started"
	auditEventRecoveryVerified   = "recovery_verified"
	auditEventPasswordReset      = "password_reset"
	auditEventCodeIssued         = "registration_code_issued"
)

// auditDispatcher decouples the request path from sink latency: events are
// handed to a buffered channel and a single worker goroutine drains it.
type auditDispatcher struct {
	cfg       AuditConfig
	sink      AuditSink
	ch        chan AuditEvent
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		cfg:  cfg,
		sink: sink,
		ch:   make(chan AuditEvent, cfg.BufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *auditDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.sink.Emit(context.Background(), event)
		case <-d.done:
			for {
				select {
				case event := <-d.ch:
					d.sink.Emit(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- event:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
	case <-d.done:
	}
}

// Close drains buffered events and stops the worker.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
