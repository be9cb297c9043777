/*
 * microsim360 - event scheduler.
 *
 * Copyright 2025, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package event implements the future-time callback queue devices use to
// schedule things like "line printed in N ticks". Kept as a doubly linked
// list ordered by relative delay exactly as the reference simulator does,
// but owned by a Queue value rather than a package-level global so each
// machine instance (and each test) gets its own.
package event

import "github.com/rcornwell/microsim360/internal/device"

// Callback runs when its event's delay has elapsed, carrying the integer
// argument it was scheduled with.
type Callback func(iarg int)

type entry struct {
	time int
	dev  device.Device
	cb   Callback
	iarg int
	prev *entry
	next *entry
}

// Queue is an owned, time-ordered list of pending events.
type Queue struct {
	head *entry
	tail *entry
}

// NewQueue returns an empty event queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Add schedules cb to run after time ticks, tagged with dev and iarg so a
// later Cancel/CancelAllFor can find it. A time of 0 runs cb
// immediately, synchronously, matching the reference simulator's
// zero-delay fast path.
func (q *Queue) Add(dev device.Device, cb Callback, time int, iarg int) {
	if time == 0 {
		cb(iarg)
		return
	}

	ev := &entry{dev: dev, cb: cb, time: time, iarg: iarg}

	cur := q.head
	if cur == nil {
		q.head = ev
		q.tail = ev
		return
	}

	for cur != nil {
		if ev.time <= cur.time {
			cur.time -= ev.time
			ev.prev = cur.prev
			ev.next = cur
			cur.prev = ev
			if ev.prev != nil {
				ev.prev.next = ev
			} else {
				q.head = ev
			}
			return
		}
		ev.time -= cur.time
		cur = cur.next
	}

	ev.prev = q.tail
	q.tail.next = ev
	q.tail = ev
}

// Cancel removes the first scheduled event matching dev/iarg, if any,
// crediting its remaining delay to the following event so total elapsed
// time for the rest of the queue is unaffected.
func (q *Queue) Cancel(dev device.Device, iarg int) {
	for cur := q.head; cur != nil; cur = cur.next {
		if cur.dev != dev || cur.iarg != iarg {
			continue
		}
		if cur.next != nil {
			cur.next.time += cur.time
			cur.next.prev = cur.prev
		} else {
			q.tail = cur.prev
		}
		if cur.prev != nil {
			cur.prev.next = cur.next
		} else {
			q.head = cur.next
		}
		return
	}
}

// CancelAllFor removes every pending event registered to dev, e.g. on
// device shutdown or unit reset.
func (q *Queue) CancelAllFor(dev device.Device) {
	for cur := q.head; cur != nil; {
		nxt := cur.next
		if cur.dev == dev {
			q.Cancel(dev, cur.iarg)
		}
		cur = nxt
	}
}

// Advance steps the queue by t ticks, firing (in order) every event whose
// remaining delay reaches zero or below.
func (q *Queue) Advance(t int) {
	cur := q.head
	if cur == nil {
		return
	}
	cur.time -= t
	for cur != nil && cur.time <= 0 {
		cur.cb(cur.iarg)
		q.head = cur.next
		if q.head != nil {
			q.head.prev = nil
			q.head.time += cur.time // carry any ticks past cur's expiry
		} else {
			q.tail = nil
		}
		cur = q.head
	}
}

// Pending reports whether any event is scheduled.
func (q *Queue) Pending() bool {
	return q.head != nil
}
