// Command loadgen fires concurrent run requests at a server and checks
// that commits never exceed the available stock. Point it at a process
// whose component stock covers a known number of runs.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	processID := flag.String("process", "", "process id to run")
	total := flag.Int("requests", 50, "number of concurrent run requests")
	expect := flag.Int("expect", 20, "expected number of successful runs")
	flag.Parse()

	if *processID == "" {
		log.Fatal("-process is required")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	runURL := fmt.Sprintf("%s/api/processes/%s/run", *baseURL, *processID)

	var successCount atomic.Int32
	var conflictCount atomic.Int32
	var otherCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *total; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			body, _ := json.Marshal(map[string]any{
				"n":    1,
				"note": fmt.Sprintf("loadgen request %d", id),
			})
			resp, err := client.Post(runURL, "application/json", bytes.NewReader(body))
			if err != nil {
				otherCount.Add(1)
				return
			}
			resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusOK:
				successCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			default:
				otherCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	conflict := conflictCount.Load()
	other := otherCount.Load()

	fmt.Println("========== LOADGEN RESULTS ==========")
	fmt.Printf("Total Requests:   %d\n", *total)
	fmt.Printf("Committed:        %d\n", success)
	fmt.Printf("Out of Stock:     %d\n", conflict)
	fmt.Printf("Other Failures:   %d\n", other)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("=====================================")

	if int(success) == *expect {
		fmt.Printf("PASS: exactly %d runs committed\n", *expect)
	} else {
		fmt.Printf("FAIL: expected %d committed runs, got %d\n", *expect, success)
	}
}
