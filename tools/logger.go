package tools

import (
	"fmt"
	"log"
	"time"
)

var isEnabled = true
var printTimestamp = true

func EnableLogger() {
	isEnabled = true
}

func DisableLogger() {
	isEnabled = false
}

func EnableLoggerTimestamp() {
	printTimestamp = true
}

func DisableLoggerTimestamp() {
	printTimestamp = false
}

func LogOutput(val ...interface{}) {
	if isEnabled {
		if printTimestamp {
			log.Println("[" + time.Now().Format("2006-01-02 15.04:05.000") + "] ")
		}
		log.Println(val...)
	}
}

// Timer measures the duration of the stages of a run
type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Restarts the timer and returns the elapsed time since the previous start
func (t *Timer) Reset() time.Duration {
	now := time.Now()
	elapsed := now.Sub(t.start)
	t.start = now
	return elapsed
}

func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Logs the elapsed time of the current stage and restarts the timer
func (t *Timer) Done(stage string) time.Duration {
	elapsed := t.Reset()
	LogOutput(FormatDone(stage, elapsed))
	return elapsed
}

func FormatDone(stage string, elapsed time.Duration) string {
	return fmt.Sprintf("%s done in %.3f sec", stage, elapsed.Seconds())
}
