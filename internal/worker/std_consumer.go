package worker

import (
	"sync"
)

// Task processes every item of a WorkUnit. Tasks run concurrently on distinct units and must only write
// to output slots owned by their unit.
type Task func(unit *WorkUnit) error

type StandardConsumer struct {
	task Task
}

func NewStandardConsumer(task Task) *StandardConsumer {
	return &StandardConsumer{
		task: task,
	}
}

// Continually consumes WorkUnits submitted to a work channel until the channel is closed. The first error raised
// by the task is submitted to the error channel; the remaining units are drained without being processed so that
// the producer never blocks.
func (c *StandardConsumer) Consume(workchan chan *WorkUnit, errchan chan error, waitGroup *sync.WaitGroup) {
	failed := false
	for work := range workchan {
		if failed {
			continue
		}

		if err := c.task(work); err != nil {
			errchan <- err
			failed = true
		}
	}

	// signal waitgroup finished work
	waitGroup.Done()
}
