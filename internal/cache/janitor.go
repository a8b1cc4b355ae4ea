package cache

import "time"

// Cleaner is any cache that can drop its expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically sweeps registered caches.
type Janitor struct {
	caches []Cleaner
	stop   chan struct{}
	done   chan struct{}
}

func NewJanitor(caches ...Cleaner) *Janitor {
	return &Janitor{
		caches: caches,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Run sweeps until Stop is called. Intended to run on its own goroutine.
func (j *Janitor) Run(interval time.Duration) {
	defer close(j.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, c := range j.caches {
				c.CleanExpired()
			}
		case <-j.stop:
			return
		}
	}
}

// Stop ends the sweep loop and waits for it to exit.
func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}
