/*
 * Copyright 2025 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package gopool launches a tracked goroutine per admitted job and
// recovers panics into a structured logger instead of letting one bad
// job goroutine crash the whole simulation. Unlike a general-purpose
// worker pool, it does not reuse goroutines across tasks: a job's
// Runtime.Run call occupies its goroutine for that job's entire
// lifetime (until Finished or killed), so there is nothing to return to
// an idle pool, age out, or cap concurrency on.
package gopool

import (
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

// Pool tracks every goroutine it has launched so a caller can wait for
// them all to exit during shutdown.
type Pool struct {
	logger zerolog.Logger
	wg     sync.WaitGroup
}

// New returns a Pool that reports recovered panics through logger.
func New(logger zerolog.Logger) *Pool {
	return &Pool{logger: logger}
}

// Go runs f on its own goroutine. A panic inside f is recovered and
// logged rather than propagating and killing the process.
func (p *Pool) Go(f func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.recoverPanic()
		f()
	}()
}

func (p *Pool) recoverPanic() {
	if r := recover(); r != nil {
		p.logger.Error().
			Interface("panic", r).
			Str("stack", string(debug.Stack())).
			Msg("recovered panic in job goroutine")
	}
}

// Wait blocks until every goroutine launched through Go has returned.
// Call it after signaling cancellation to every running job, to ensure a
// clean exit before releasing shared resources.
func (p *Pool) Wait() {
	p.wg.Wait()
}
