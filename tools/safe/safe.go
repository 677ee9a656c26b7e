package safe

import (
	"anonrelay/logger"
)

// Go starts a goroutine that recovers from panic, so that one connection's
// panic never takes the process down.
func Go(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("[safe.Go] panic recovered: %v", r)
			}
		}()
		f()
	}()
}
