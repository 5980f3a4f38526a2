// stress fires concurrent purchases of one product at a running server and
// checks that successes never exceed the starting stock.
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

type purchaseRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type purchaseResponse struct {
	Success  bool   `json:"success"`
	NewStock *int   `json:"newStock"`
	Message  string `json:"message"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	productID := flag.Int64("product", 1, "product id to purchase")
	requests := flag.Int("requests", 50, "number of concurrent purchase requests")
	initialStock := flag.Int("stock", 0, "expected starting stock (0 to skip assertions)")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	var success, fail atomic.Int32
	var minStock atomic.Int64
	minStock.Store(int64(^uint64(0) >> 1))

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			body, _ := json.Marshal(purchaseRequest{ProductID: *productID, Quantity: 1})
			resp, err := client.Post(*baseURL+"/api/purchase", "application/json", bytes.NewReader(body))
			if err != nil {
				log.Printf("request failed: %v", err)
				fail.Add(1)
				return
			}
			defer resp.Body.Close()

			var pr purchaseResponse
			if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
				log.Printf("bad response: %v", err)
				fail.Add(1)
				return
			}
			if pr.Success {
				success.Add(1)
				if pr.NewStock != nil {
					for {
						cur := minStock.Load()
						if int64(*pr.NewStock) >= cur || minStock.CompareAndSwap(cur, int64(*pr.NewStock)) {
							break
						}
					}
				}
			} else {
				fail.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("========== STRESS RESULTS ==========")
	fmt.Printf("Total Requests:   %d\n", *requests)
	fmt.Printf("Successful:       %d\n", success.Load())
	fmt.Printf("Failed:           %d\n", fail.Load())
	fmt.Printf("Lowest Stock:     %d\n", minStock.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("====================================")

	if *initialStock > 0 {
		if int(success.Load()) <= *initialStock {
			fmt.Println("PASS: successes never exceeded starting stock")
		} else {
			fmt.Printf("FAIL: %d successes against starting stock %d\n", success.Load(), *initialStock)
		}
	}
}
