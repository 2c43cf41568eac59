package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalfonso89/currency-converter/internal/models"
)

// Conversions running while refreshes swap tables must always see a complete
// table: either the fallback (empty) table or one of the two served tables.
func TestConcurrentConvertDuringRefresh(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	env.upstream.SetDelay(time.Millisecond)

	const converters = 10
	const requestsPerConverter = 20
	const refreshes = 10

	var wg sync.WaitGroup
	results := make(chan float64, converters*requestsPerConverter)

	for i := 0; i < converters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 5 * time.Second}
			for j := 0; j < requestsPerConverter; j++ {
				response, err := client.Get(server.URL + convertURL("100", "USD", "EUR"))
				if err != nil {
					t.Errorf("convert request failed: %v", err)
					return
				}
				var body models.ConvertResponse
				decodeErr := decodeBody(response, &body)
				response.Body.Close()
				if decodeErr != nil {
					t.Errorf("decode failed: %v", decodeErr)
					return
				}
				results <- body.Converted
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < refreshes; i++ {
			if i%2 == 0 {
				env.upstream.RespondWithRates(map[string]float64{"USD": 1, "EUR": 0.5})
			} else {
				env.upstream.RespondWithRates(map[string]float64{"USD": 1, "EUR": 0.25})
			}
			response, err := http.Post(server.URL+"/api/v1/rates/refresh", "application/json", nil)
			if err != nil {
				t.Errorf("refresh request failed: %v", err)
				return
			}
			response.Body.Close()
		}
	}()

	wg.Wait()
	close(results)

	count := 0
	for converted := range results {
		count++
		assert.Contains(t, []float64{100, 50, 25}, converted)
	}
	require.Equal(t, converters*requestsPerConverter, count)
}

func decodeBody(response *http.Response, value any) error {
	return json.NewDecoder(response.Body).Decode(value)
}
