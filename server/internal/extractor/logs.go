package extractor

import (
	"bufio"
	"context"
	"io"
)

func produceLines(ctx context.Context, r io.Reader, lines chan<- []byte) {
	defer close(lines)

	scanner := bufio.NewScanner(r)
	// progress lines can exceed the default token size on long paths
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())

		select {
		case lines <- line:
		case <-ctx.Done():
			return
		}
	}
}

func consumeLines(ctx context.Context, lines <-chan []byte, consume func([]byte)) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-lines:
			if !ok {
				return
			}
			consume(entry)
		}
	}
}
