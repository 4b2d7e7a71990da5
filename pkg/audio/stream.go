package audio

import "github.com/user/unbundle/pkg/media"

// StreamResult is the single delivery of Stream: the encoded track, or the
// error that stopped the extraction.
type StreamResult struct {
	Data []byte
	Err  error
}

// Stream runs Extract on its own goroutine and delivers the result through
// a channel. It opens an independent handle on the same path, so the
// extractor (and its file) remain free for other work while the transcode
// runs. The extractor's cancellation token, when set, is shared with the
// background handle.
//
// The channel is buffered and closed after the single delivery, so the
// result may be received at any time.
func (e *Extractor) Stream(format Format) <-chan StreamResult {
	ch := make(chan StreamResult, 1)

	go func() {
		defer close(ch)

		f, err := media.Open(e.f.Path(), media.WithLogger(e.log))
		if err != nil {
			ch <- StreamResult{Err: err}
			return
		}
		defer f.Close()

		ext, err := New(f, e.track)
		if err != nil {
			ch <- StreamResult{Err: err}
			return
		}
		data, err := ext.WithToken(e.token).Extract(format)
		ch <- StreamResult{Data: data, Err: err}
	}()

	return ch
}
