package batch

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zafrem/data-detector/detect"
)

func TestStream(t *testing.T) {
	s := testScanner(t, WithWorkers(3))

	texts := make([]string, 10)
	for i := range texts {
		if i%2 == 0 {
			texts[i] = fmt.Sprintf("doc %d SSN 123-45-6789", i)
		} else {
			texts[i] = fmt.Sprintf("doc %d plain", i)
		}
	}

	in := make(chan string)
	go func() {
		defer close(in)
		for _, text := range texts {
			in <- text
		}
	}()

	seen := make(map[int]bool)
	for item := range s.Stream(context.Background(), in) {
		require.NoError(t, item.Err)
		require.NotNil(t, item.Result)
		assert.False(t, seen[item.Index], "index %d emitted twice", item.Index)
		seen[item.Index] = true

		assert.Equal(t, texts[item.Index], item.Result.Text)
		assert.Equal(t, item.Index%2 == 0, item.Result.HasMatches())
	}
	assert.Len(t, seen, len(texts))
}

func TestStreamRedaction(t *testing.T) {
	s := testScanner(t, WithWorkers(2), WithRedaction(detect.StrategyMask))

	texts := []string{"SSN 123-45-6789", "plain"}
	in := make(chan string, len(texts))
	for _, text := range texts {
		in <- text
	}
	close(in)

	want := []string{"SSN ***-**-****", "plain"}
	count := 0
	for item := range s.Stream(context.Background(), in) {
		require.NoError(t, item.Err)
		assert.Nil(t, item.Result)
		require.NotNil(t, item.Redaction)
		assert.Equal(t, texts[item.Index], item.Redaction.Original)
		assert.Equal(t, want[item.Index], item.Redaction.Redacted)
		count++
	}
	assert.Equal(t, len(texts), count)
}

func TestStreamCancel(t *testing.T) {
	s := testScanner(t, WithWorkers(2))
	ctx, cancel := context.WithCancel(context.Background())

	in := make(chan string)
	out := s.Stream(ctx, in)

	in <- "SSN 123-45-6789"
	item := <-out
	require.NoError(t, item.Err)
	require.NotNil(t, item.Result)
	assert.True(t, item.Result.HasMatches())

	// Cancellation shuts the stream down without closing the input.
	cancel()
	for range out {
	}
}
