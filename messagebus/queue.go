// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"github.com/bitmark-inc/custodyd/counter"
)

// DefaultQueueSize - capacity used when a queue is created with size 0
const DefaultQueueSize = 1000

// Message - one queued item
type Message struct {
	Command string
	Item    interface{}
}

// Queue - a bounded non-blocking queue
type Queue struct {
	c       chan Message
	dropped counter.Counter
}

// NewQueue - create a queue holding up to size messages
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		c: make(chan Message, size),
	}
}

// Send - queue an item, false if the queue was full and it was dropped
func (q *Queue) Send(command string, item interface{}) bool {
	select {
	case q.c <- Message{Command: command, Item: item}:
		return true
	default:
		q.dropped.Increment()
		return false
	}
}

// Chan - channel to read from
func (q *Queue) Chan() <-chan Message {
	return q.c
}

// Dropped - number of messages discarded because the queue was full
func (q *Queue) Dropped() uint64 {
	return q.dropped.Uint64()
}
