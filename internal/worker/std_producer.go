package worker

import (
	"sync"
)

type StandardProducer struct {
	count     int
	chunkSize int
}

func NewStandardProducer(count int, chunkSize int) *StandardProducer {
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &StandardProducer{
		count:     count,
		chunkSize: chunkSize,
	}
}

// Splits the [0, count) range in WorkUnits of at most chunkSize items and submits them to the provided work channel.
// Closes the channel when all work is submitted.
func (p *StandardProducer) Produce(work chan *WorkUnit, wg *sync.WaitGroup) {
	for begin := 0; begin < p.count; begin += p.chunkSize {
		end := begin + p.chunkSize
		if end > p.count {
			end = p.count
		}
		work <- &WorkUnit{
			Begin: begin,
			End:   end,
		}
	}
	close(work)
	wg.Done()
}
