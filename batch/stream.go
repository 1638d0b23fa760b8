package batch

import (
	"context"
	"sync"

	"github.com/zafrem/data-detector/detect"
)

// Item is one streamed result. Index is the position of the input text in
// arrival order; items may leave the stream out of order, so consumers that
// care reorder by Index. Exactly one of Result and Redaction is set unless
// Err is non-nil.
type Item struct {
	Index     int
	Result    *detect.FindResult
	Redaction *detect.RedactionResult
	Err       error
}

type streamJob struct {
	index int
	text  string
}

// Stream scans texts as they arrive on in, emitting one Item per text. The
// output channel closes once in closes and all pending work is done, or when
// ctx ends. A scanner built with WithRedaction emits redaction results.
func (s *Scanner) Stream(ctx context.Context, in <-chan string, opts ...detect.FindOption) <-chan Item {
	out := make(chan Item)
	go func() {
		defer close(out)

		jobs := make(chan streamJob)
		var wg sync.WaitGroup
		for w := 0; w < s.workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := range jobs {
					select {
					case out <- s.process(ctx, j, opts):
					case <-ctx.Done():
						return
					}
				}
			}()
		}

	dispatch:
		for index := 0; ; index++ {
			select {
			case <-ctx.Done():
				break dispatch
			case text, ok := <-in:
				if !ok {
					break dispatch
				}
				select {
				case jobs <- streamJob{index: index, text: text}:
				case <-ctx.Done():
					break dispatch
				}
			}
		}
		close(jobs)
		wg.Wait()
	}()
	return out
}

func (s *Scanner) process(ctx context.Context, j streamJob, opts []detect.FindOption) Item {
	item := Item{Index: j.index}
	if s.strategy != "" {
		item.Redaction, item.Err = s.engine.Redact(ctx, j.text, s.strategy, opts...)
		return item
	}
	item.Result, item.Err = s.engine.Find(ctx, j.text, opts...)
	return item
}
