package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/dalfonso89/currency-converter/internal/middleware"
)

// LoadTestConfig holds configuration for load testing
type LoadTestConfig struct {
	BaseURL         string
	Currencies      []string
	ConcurrentUsers int
	RequestsPerUser int
	RefreshEvery    int
	Timeout         time.Duration
	TestDuration    time.Duration
	RampUpDuration  time.Duration
	ThinkTime       time.Duration
}

// LoadTestResult holds the result of a single request
type LoadTestResult struct {
	UserID     int
	RequestID  int
	Kind       string
	StatusCode int
	Duration   time.Duration
	Success    bool
	Error      error
	Timestamp  time.Time
}

// LoadTestSummary holds the summary of load test results
type LoadTestSummary struct {
	TotalRequests       int
	SuccessfulRequests  int
	FailedRequests      int
	RequestsByKind      map[string]int
	TotalDuration       time.Duration
	AverageResponseTime time.Duration
	MinResponseTime     time.Duration
	MaxResponseTime     time.Duration
	RequestsPerSecond   float64
	ErrorRate           float64
	ResponseTime95th    time.Duration
	ResponseTime99th    time.Duration
}

const (
	kindConvert = "convert"
	kindRefresh = "refresh"
)

func main() {
	var config LoadTestConfig
	var currencies string

	flag.StringVar(&config.BaseURL, "url", "http://localhost:8081", "Base URL of the converter service")
	flag.StringVar(&currencies, "currencies", "USD,EUR,GBP,JPY,CHF,CAD", "Comma separated currency codes to pick pairs from")
	flag.IntVar(&config.ConcurrentUsers, "users", 10, "Number of concurrent users")
	flag.IntVar(&config.RequestsPerUser, "requests", 100, "Number of requests per user")
	flag.IntVar(&config.RefreshEvery, "refresh-every", 0, "Send a rates refresh every N requests per user (0 = never)")
	flag.DurationVar(&config.Timeout, "timeout", 30*time.Second, "Request timeout")
	flag.DurationVar(&config.TestDuration, "duration", 0, "Test duration (0 = run until all requests complete)")
	flag.DurationVar(&config.RampUpDuration, "rampup", 5*time.Second, "Ramp-up duration")
	flag.DurationVar(&config.ThinkTime, "think", 100*time.Millisecond, "Think time between requests")
	flag.Parse()

	config.Currencies = parseCurrencies(currencies)
	if len(config.Currencies) == 0 {
		fmt.Println("at least one currency is required")
		return
	}

	fmt.Printf("Starting load test...\n")
	fmt.Printf("URL: %s\n", config.BaseURL)
	fmt.Printf("Currencies: %s\n", strings.Join(config.Currencies, ", "))
	fmt.Printf("Concurrent Users: %d\n", config.ConcurrentUsers)
	fmt.Printf("Requests per User: %d\n", config.RequestsPerUser)
	fmt.Printf("Refresh Every: %d\n", config.RefreshEvery)
	fmt.Printf("Timeout: %v\n", config.Timeout)
	fmt.Printf("Ramp-up Duration: %v\n", config.RampUpDuration)
	fmt.Printf("Think Time: %v\n", config.ThinkTime)
	fmt.Printf("Test Duration: %v\n", config.TestDuration)
	fmt.Println()

	summary := runLoadTest(config)

	printSummary(summary)
}

func parseCurrencies(list string) []string {
	var codes []string
	for _, code := range strings.Split(list, ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

func runLoadTest(config LoadTestConfig) LoadTestSummary {
	results := make(chan LoadTestResult, config.ConcurrentUsers*config.RequestsPerUser)

	client := &http.Client{
		Timeout: config.Timeout,
	}

	startTime := time.Now()

	ctx := context.Background()
	if config.TestDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.TestDuration)
		defer cancel()
	}

	var wg sync.WaitGroup
	rampUpDelay := config.RampUpDuration / time.Duration(max(config.ConcurrentUsers, 1))

	for userID := 0; userID < config.ConcurrentUsers; userID++ {
		wg.Add(1)
		go func(uid int) {
			defer wg.Done()

			time.Sleep(time.Duration(uid) * rampUpDelay)

			for reqID := 0; reqID < config.RequestsPerUser; reqID++ {
				select {
				case <-ctx.Done():
					return
				default:
				}

				if config.RefreshEvery > 0 && reqID > 0 && reqID%config.RefreshEvery == 0 {
					results <- makeRequest(ctx, client, http.MethodPost, config.BaseURL+"/api/v1/rates/refresh", kindRefresh, uid, reqID)
				} else {
					results <- makeRequest(ctx, client, http.MethodGet, convertTarget(config), kindConvert, uid, reqID)
				}

				if config.ThinkTime > 0 {
					time.Sleep(config.ThinkTime)
				}
			}
		}(userID)
	}

	wg.Wait()
	close(results)

	return processResults(results, time.Since(startTime))
}

func convertTarget(config LoadTestConfig) string {
	query := url.Values{}
	query.Set("amount", fmt.Sprintf("%.2f", rand.Float64()*1000))
	query.Set("from", config.Currencies[rand.IntN(len(config.Currencies))])
	query.Set("to", config.Currencies[rand.IntN(len(config.Currencies))])
	return config.BaseURL + "/api/v1/convert?" + query.Encode()
}

func makeRequest(ctx context.Context, client *http.Client, method, target, kind string, userID, requestID int) LoadTestResult {
	start := time.Now()
	result := LoadTestResult{
		UserID:    userID,
		RequestID: requestID,
		Kind:      kind,
		Timestamp: start,
	}

	request, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		result.Error = err
		return result
	}
	request.Header.Set(middleware.RequestIDHeader, uuid.NewString())

	resp, err := client.Do(request)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		return result
	}
	defer resp.Body.Close()

	// drain so the connection is reused
	_, _ = io.Copy(io.Discard, resp.Body)

	result.StatusCode = resp.StatusCode
	result.Success = resp.StatusCode >= 200 && resp.StatusCode < 300

	return result
}

func processResults(results <-chan LoadTestResult, totalDuration time.Duration) LoadTestSummary {
	summary := LoadTestSummary{
		TotalDuration:  totalDuration,
		RequestsByKind: make(map[string]int),
	}
	var responseTimes []time.Duration

	for result := range results {
		summary.TotalRequests++
		summary.RequestsByKind[result.Kind]++
		responseTimes = append(responseTimes, result.Duration)

		if result.Success {
			summary.SuccessfulRequests++
		} else {
			summary.FailedRequests++
		}
	}

	if summary.TotalRequests == 0 {
		return summary
	}

	summary.ErrorRate = float64(summary.FailedRequests) / float64(summary.TotalRequests) * 100
	if totalDuration > 0 {
		summary.RequestsPerSecond = float64(summary.TotalRequests) / totalDuration.Seconds()
	}

	slices.Sort(responseTimes)

	var totalResponseTime time.Duration
	for _, rt := range responseTimes {
		totalResponseTime += rt
	}
	summary.MinResponseTime = responseTimes[0]
	summary.MaxResponseTime = responseTimes[len(responseTimes)-1]
	summary.AverageResponseTime = totalResponseTime / time.Duration(len(responseTimes))
	summary.ResponseTime95th = calculatePercentile(responseTimes, 95)
	summary.ResponseTime99th = calculatePercentile(responseTimes, 99)

	return summary
}

// calculatePercentile expects times sorted ascending
func calculatePercentile(times []time.Duration, percentile int) time.Duration {
	if len(times) == 0 {
		return 0
	}

	index := int(float64(len(times)) * float64(percentile) / 100.0)
	if index >= len(times) {
		index = len(times) - 1
	}

	return times[index]
}

func printSummary(summary LoadTestSummary) {
	fmt.Println("=== Load Test Results ===")
	if summary.TotalRequests == 0 {
		fmt.Println("No requests were sent")
		return
	}
	fmt.Printf("Total Requests: %d\n", summary.TotalRequests)
	fmt.Printf("  convert: %d\n", summary.RequestsByKind[kindConvert])
	fmt.Printf("  refresh: %d\n", summary.RequestsByKind[kindRefresh])
	fmt.Printf("Successful Requests: %d (%.2f%%)\n", summary.SuccessfulRequests,
		float64(summary.SuccessfulRequests)/float64(summary.TotalRequests)*100)
	fmt.Printf("Failed Requests: %d (%.2f%%)\n", summary.FailedRequests, summary.ErrorRate)
	fmt.Printf("Total Duration: %v\n", summary.TotalDuration)
	fmt.Printf("Requests per Second: %.2f\n", summary.RequestsPerSecond)
	fmt.Printf("Average Response Time: %v\n", summary.AverageResponseTime)
	fmt.Printf("Min Response Time: %v\n", summary.MinResponseTime)
	fmt.Printf("Max Response Time: %v\n", summary.MaxResponseTime)
	fmt.Printf("95th Percentile Response Time: %v\n", summary.ResponseTime95th)
	fmt.Printf("99th Percentile Response Time: %v\n", summary.ResponseTime99th)

	fmt.Println("\n=== Performance Assessment ===")
	if summary.ErrorRate > 5.0 {
		color.Yellow("⚠️  High error rate: %.2f%% (target: < 5%%)", summary.ErrorRate)
	} else {
		color.Green("✅ Error rate: %.2f%% (good)", summary.ErrorRate)
	}

	if summary.AverageResponseTime > 2*time.Second {
		color.Yellow("⚠️  High average response time: %v (target: < 2s)", summary.AverageResponseTime)
	} else {
		color.Green("✅ Average response time: %v (good)", summary.AverageResponseTime)
	}

	if summary.RequestsPerSecond < 10 {
		color.Yellow("⚠️  Low throughput: %.2f req/s (target: > 10 req/s)", summary.RequestsPerSecond)
	} else {
		color.Green("✅ Throughput: %.2f req/s (good)", summary.RequestsPerSecond)
	}
}
