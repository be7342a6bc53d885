package worker

import "sync"

type Producer interface {
	Produce(work chan *WorkUnit, wg *sync.WaitGroup)
}
