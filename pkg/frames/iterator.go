package frames

import (
	"errors"

	"github.com/user/unbundle/pkg/media"
)

// Iter walks extracted frames one at a time:
//
//	it, err := ext.Iter(frames.Span{Start: 0, End: 99}, nil)
//	defer it.Close()
//	for it.Next() {
//		use(it.Frame())
//	}
//	if err := it.Err(); err != nil { ... }
//
// The zero value is an exhausted iterator.
type Iter struct {
	p    *pipeline
	cur  *Frame
	err  error
	done bool
}

// Next decodes forward until the next requested frame is available.
func (it *Iter) Next() bool {
	if it.done || it.p == nil {
		it.done = true
		return false
	}
	f, err := it.p.next()
	if err != nil {
		it.done = true
		it.cur = nil
		if !errors.Is(err, errExhausted) {
			it.err = err
		}
		return false
	}
	it.cur = f
	return true
}

// Frame returns the frame produced by the last successful Next.
func (it *Iter) Frame() *Frame {
	return it.cur
}

// Err returns the error that terminated iteration, if any.
func (it *Iter) Err() error {
	return it.err
}

// Close releases the iterator's decoder. Safe to call at any point.
func (it *Iter) Close() {
	it.done = true
	if it.p != nil {
		it.p.close()
		it.p = nil
	}
}

// streamBuffer is the delivery channel capacity of the Stream facade. The
// decode goroutine blocks on send once the consumer falls this far behind.
const streamBuffer = 8

// StreamItem is one delivery from Stream: a frame, or the terminal error.
type StreamItem struct {
	Frame *Frame
	Err   error
}

// Stream runs the extraction on its own goroutine and delivers frames
// through a bounded channel. It opens an independent handle on the same
// path, so the extractor (and its file) remain free for other work while
// the stream runs.
//
// The channel closes when the extraction finishes; a failure, including
// cancellation, arrives as the final item's Err. A consumer that stops
// reading early must cancel via the options token and drain the channel,
// otherwise the decode goroutine stays blocked on send.
func (e *Extractor) Stream(r Range, opts *Options) <-chan StreamItem {
	o := opts.normalized()
	ch := make(chan StreamItem, streamBuffer)

	go func() {
		defer close(ch)

		file, err := media.Open(e.f.Path(), media.WithLogger(e.log))
		if err != nil {
			ch <- StreamItem{Err: err}
			return
		}
		defer file.Close()

		ext, err := New(file, e.track)
		if err != nil {
			ch <- StreamItem{Err: err}
			return
		}
		defer ext.Close()

		it, err := ext.Iter(r, o)
		if err != nil {
			ch <- StreamItem{Err: err}
			return
		}
		defer it.Close()

		for it.Next() {
			ch <- StreamItem{Frame: it.Frame()}
		}
		if err := it.Err(); err != nil {
			ch <- StreamItem{Err: err}
		}
	}()

	return ch
}
