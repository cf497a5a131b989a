/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package lifecycle provides a small Start/Stop state machine shared by the pipeline's
// long-running services (transformer, combiner, score computer) and by the in-process
// pub/sub implementations they use for their streaming hand-offs.
package lifecycle

import (
	"errors"
	"sync/atomic"

	tlog "github.com/trustbloc/logutil-go/pkg/log"
	"go.uber.org/zap"
)

var logger = tlog.New("lifecycle")

// ErrNotStarted is returned by a service that is used while its Lifecycle is not Started.
var ErrNotStarted = errors.New("service has not started")

// States of a Lifecycle.
const (
	StateNotStarted uint32 = iota
	StateStarting
	StateStarted
	StateStopping
	StateStopped
)

// Lifecycle implements the lifecycle of a service, i.e. Start and Stop, guarding against
// duplicate or out-of-order transitions.
type Lifecycle struct {
	name      string
	state     uint32
	startFunc func()
	stopFunc  func()
}

// Opt configures a Lifecycle.
type Opt func(*Lifecycle)

// WithStart sets the function invoked on Start.
func WithStart(f func()) Opt {
	return func(l *Lifecycle) { l.startFunc = f }
}

// WithStop sets the function invoked on Stop.
func WithStop(f func()) Opt {
	return func(l *Lifecycle) { l.stopFunc = f }
}

// New returns a new Lifecycle in the NotStarted state.
func New(name string, opts ...Opt) *Lifecycle {
	l := &Lifecycle{
		name:      name,
		startFunc: func() {},
		stopFunc:  func() {},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Start transitions NotStarted -> Started, invoking the configured start function. A call on
// an already-started Lifecycle is a no-op.
func (l *Lifecycle) Start() {
	if !atomic.CompareAndSwapUint32(&l.state, StateNotStarted, StateStarting) {
		logger.Debug("service already started", zap.String("name", l.name))

		return
	}

	l.startFunc()

	atomic.StoreUint32(&l.state, StateStarted)
}

// Stop transitions Started -> Stopped, invoking the configured stop function. A call on an
// already-stopped (or never-started) Lifecycle is a no-op.
func (l *Lifecycle) Stop() {
	if !atomic.CompareAndSwapUint32(&l.state, StateStarted, StateStopping) {
		logger.Debug("service already stopped", zap.String("name", l.name))

		return
	}

	l.stopFunc()

	atomic.StoreUint32(&l.state, StateStopped)
}

// State returns the current state.
func (l *Lifecycle) State() uint32 {
	return atomic.LoadUint32(&l.state)
}
