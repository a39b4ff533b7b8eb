package raster

import (
	"runtime"
	"sync"
)

// forEachRow runs fn for rows [0, rows) on a pool of workers.
func forEachRow(rows, workers int, fn func(y int)) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, rows)

	rowChan := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rowChan {
				fn(y)
			}
		}()
	}
	for y := 0; y < rows; y++ {
		rowChan <- y
	}
	close(rowChan)
	wg.Wait()
}
