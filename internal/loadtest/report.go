package loadtest

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"time"
)

type Report struct {
	Total       int
	Succeeded   int
	Failed      int
	SuccessRate float64 // percent

	// Latency figures cover successful requests only.
	AvgLatency time.Duration
	MinLatency time.Duration
	MaxLatency time.Duration
	P95Latency time.Duration

	Errors  map[string]int
	Elapsed time.Duration
}

func NewReport(results []Result, elapsed time.Duration) Report {
	r := Report{Total: len(results), Errors: make(map[string]int), Elapsed: elapsed}

	var latencies []time.Duration
	for _, res := range results {
		if res.Success {
			r.Succeeded++
			latencies = append(latencies, res.Latency)
			continue
		}
		r.Failed++
		r.Errors[res.Err]++
	}

	if r.Total > 0 {
		r.SuccessRate = float64(r.Succeeded) / float64(r.Total) * 100
	}
	if len(latencies) == 0 {
		return r
	}

	slices.Sort(latencies)
	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	r.AvgLatency = sum / time.Duration(len(latencies))
	r.MinLatency = latencies[0]
	r.MaxLatency = latencies[len(latencies)-1]
	r.P95Latency = latencies[percentileIndex(len(latencies), 95)]
	return r
}

// percentileIndex returns the nearest-rank index of the p-th percentile in a sorted slice of n.
func percentileIndex(n, p int) int {
	idx := (n*p+99)/100 - 1
	return max(0, min(idx, n-1))
}

func (r Report) Print(w io.Writer) {
	fmt.Fprintln(w, "========== LOAD TEST RESULTS ==========")
	fmt.Fprintf(w, "Total Requests:      %d\n", r.Total)
	fmt.Fprintf(w, "Successful Requests: %d\n", r.Succeeded)
	fmt.Fprintf(w, "Failed Requests:     %d\n", r.Failed)
	fmt.Fprintf(w, "Success Rate:        %.2f%%\n", r.SuccessRate)
	fmt.Fprintf(w, "Average Latency:     %v\n", r.AvgLatency)
	fmt.Fprintf(w, "Min / Max Latency:   %v / %v\n", r.MinLatency, r.MaxLatency)
	fmt.Fprintf(w, "P95 Latency:         %v\n", r.P95Latency)
	fmt.Fprintf(w, "Duration:            %v\n", r.Elapsed)
	fmt.Fprintln(w, "=======================================")

	if r.Failed == 0 {
		return
	}

	messages := make([]string, 0, len(r.Errors))
	for msg := range r.Errors {
		messages = append(messages, msg)
	}
	sort.Slice(messages, func(i, j int) bool {
		if r.Errors[messages[i]] != r.Errors[messages[j]] {
			return r.Errors[messages[i]] > r.Errors[messages[j]]
		}
		return messages[i] < messages[j]
	})

	fmt.Fprintln(w, "\nError Distribution:")
	for _, msg := range messages {
		fmt.Fprintf(w, "%s: %d occurrences\n", msg, r.Errors[msg])
	}
}
