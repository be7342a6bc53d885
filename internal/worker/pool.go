package worker

import (
	"runtime"
	"sync"
)

// number of work units submitted per consumer when the caller does not force a chunk size
const unitsPerConsumer = 4

// Returns the number of consumers to use for the requested worker count: values lower than 1 select one consumer
// per CPU, and at least one consumer is always returned
func ResolveWorkers(requested int) int {
	if requested >= 1 {
		return requested
	}
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

// Returns a chunk size that splits count items in a few units per consumer
func DefaultChunkSize(count int, workers int) int {
	units := ResolveWorkers(workers) * unitsPerConsumer
	chunk := (count + units - 1) / units
	if chunk < 1 {
		return 1
	}
	return chunk
}

// Runs the task over the [0, count) range using the given number of consumers and the default chunk size.
// Returns the first error raised by a task, after all consumers have quit.
func Run(count int, workers int, task Task) error {
	return RunChunked(count, workers, DefaultChunkSize(count, workers), task)
}

// Runs the task over the [0, count) range split in units of chunkSize items
func RunChunked(count int, workers int, chunkSize int, task Task) error {
	if count <= 0 {
		return nil
	}

	numConsumers := ResolveWorkers(workers)

	// a single consumer does not need any goroutine
	if numConsumers == 1 {
		if chunkSize < 1 {
			chunkSize = 1
		}
		for begin := 0; begin < count; begin += chunkSize {
			end := begin + chunkSize
			if end > count {
				end = count
			}
			if err := task(&WorkUnit{Begin: begin, End: end}); err != nil {
				return err
			}
		}
		return nil
	}

	// init channel where to submit work with a buffer 5 times greater than the number of consumers
	workChannel := make(chan *WorkUnit, numConsumers*5)

	// every consumer submits at most one error, so the buffer never blocks them
	errorChannel := make(chan error, numConsumers)

	var waitGroup sync.WaitGroup

	// add producer to waitgroup and launch producer goroutine
	waitGroup.Add(1)
	producer := NewStandardProducer(count, chunkSize)
	go producer.Produce(workChannel, &waitGroup)

	// add consumers to waitgroup and launch them
	for i := 0; i < numConsumers; i++ {
		waitGroup.Add(1)
		consumer := NewStandardConsumer(task)
		go consumer.Consume(workChannel, errorChannel, &waitGroup)
	}

	// wait for producers and consumers to finish
	waitGroup.Wait()

	// find if there are errors in the error channel buffer
	close(errorChannel)
	if err, ok := <-errorChannel; ok {
		return err
	}

	return nil
}
