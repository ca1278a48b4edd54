package main

import (
	"context"
	"errors"
	"io"
	"time"
)

// 100ms of 24kHz mono 16-bit PCM, the realtime input format.
const (
	audioChunkBytes = 4800
	audioChunkSpan  = 100 * time.Millisecond
)

// streamAudio reads PCM from r in fixed chunks and hands each to sink, one
// chunk per interval so a prerecorded file plays at real-time speed. A live
// source such as a FIFO fed by a recorder paces itself. It returns nil at
// end of input or when ctx ends. sink must not retain the chunk.
func streamAudio(ctx context.Context, r io.Reader, sink func([]byte) error, chunk int, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	buf := make([]byte, chunk)
	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			if serr := sink(buf[:n]); serr != nil {
				return serr
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
