package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dalfonso89/currency-converter/internal/logger"
)

// RateWriter receives a complete replacement table.
type RateWriter interface {
	ReplaceAll(newRates map[string]float64)
}

// RateFetcher performs one GET against the rates API per Refresh call and
// installs the returned table. It is the only writer of the table.
type RateFetcher struct {
	store      RateWriter
	httpClient *http.Client
	logger     *logrus.Entry
	now        func() time.Time

	mu                 sync.Mutex
	internetAccessible bool
}

// NewRateFetcher creates a fetcher writing into store. A nil client uses a
// client with no timeout beyond the transport defaults.
func NewRateFetcher(store RateWriter, httpClient *http.Client, log *logger.Logger) *RateFetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &RateFetcher{
		store:      store,
		httpClient: httpClient,
		logger:     log.Component("rate_fetcher"),
		now:        time.Now,
	}
}

// InternetAccessible reports the connectivity flag as of the last attempt.
func (fetcher *RateFetcher) InternetAccessible() bool {
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	return fetcher.internetAccessible
}

// Refresh fetches apiURL once and replaces the table on success. On any
// failure the table is left untouched.
func (fetcher *RateFetcher) Refresh(ctx context.Context, apiURL string) RefreshOutcome {
	started := fetcher.now()
	requestLog := fetcher.logger.WithField("url", RedactURL(apiURL))
	requestLog.Debug("Requesting exchange rates")

	newRates, statusCode, err := fetcher.fetch(ctx, apiURL)

	outcome := RefreshOutcome{StatusCode: statusCode}
	var refreshErr *RefreshError

	switch {
	case err == nil:
		fetcher.store.ReplaceAll(newRates)
		outcome.Kind = OutcomeSuccess
		outcome.RateCount = len(newRates)
		fetcher.setInternetAccessible(true)
	case ctx.Err() != nil:
		// the caller gave up; that says nothing about the API, so connectivity is unchanged
		outcome.Kind = OutcomeNetworkUnreachable
		outcome.Err = err
	case errors.As(err, &refreshErr) && refreshErr.Kind == OutcomeParseError:
		// the server was reached but its answer is unusable; connectivity is unchanged
		outcome.Kind = OutcomeParseError
		outcome.Err = err
	case errors.As(err, &refreshErr):
		outcome.Kind = refreshErr.Kind
		outcome.Err = err
		fetcher.setInternetAccessible(false)
	default:
		outcome.Kind = OutcomeNetworkUnreachable
		outcome.Err = err
		fetcher.setInternetAccessible(false)
	}

	outcome.InternetAccessible = fetcher.InternetAccessible()
	outcome.CompletedAt = fetcher.now()
	outcome.Duration = outcome.CompletedAt.Sub(started)

	fields := logrus.Fields{
		"outcome":             outcome.Kind.String(),
		"internet_accessible": outcome.InternetAccessible,
	}
	if statusCode != 0 {
		fields["status"] = statusCode
	}
	if outcome.Succeeded() {
		requestLog.WithFields(fields).WithField("rates", outcome.RateCount).Info("Exchange rates refreshed")
	} else {
		requestLog.WithFields(fields).WithError(outcome.Err).Warn("Exchange rate refresh failed")
	}

	return outcome
}

func (fetcher *RateFetcher) fetch(ctx context.Context, apiURL string) (map[string]float64, int, error) {
	const op = "RateFetcher.fetch"

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, 0, &RefreshError{Kind: OutcomeNetworkUnreachable, Cause: errors.Wrap(err, op)}
	}

	response, err := fetcher.httpClient.Do(request)
	if err != nil {
		return nil, 0, &RefreshError{Kind: OutcomeNetworkUnreachable, Cause: errors.Wrap(err, op)}
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil, response.StatusCode, &RefreshError{Kind: OutcomeHTTPError, StatusCode: response.StatusCode}
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		// a response arrived, so connectivity holds; the body is simply unusable
		return nil, response.StatusCode, &RefreshError{Kind: OutcomeParseError, StatusCode: response.StatusCode, Cause: errors.Wrap(err, op)}
	}

	newRates, err := ParseRates(body)
	if err != nil {
		return nil, response.StatusCode, &RefreshError{Kind: OutcomeParseError, StatusCode: response.StatusCode, Cause: errors.Wrap(err, op)}
	}

	return newRates, response.StatusCode, nil
}

// ParseRates extracts the rates object from an upstream body. The body must be
// a single JSON object whose "rates" member (matched exactly, at most once) is
// an object of strictly positive finite numbers. Other members are ignored.
func ParseRates(body []byte) (map[string]float64, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))

	if err := expectDelim(decoder, '{'); err != nil {
		return nil, errors.Wrap(err, "decode rates body")
	}

	var parsed map[string]float64
	for decoder.More() {
		key, err := objectKey(decoder)
		if err != nil {
			return nil, errors.Wrap(err, "decode rates body")
		}

		if key != ratesKey {
			var skipped json.RawMessage
			if err := decoder.Decode(&skipped); err != nil {
				return nil, errors.Wrapf(err, "decode %q", key)
			}
			continue
		}
		if parsed != nil {
			return nil, errors.Errorf("duplicate %q object", ratesKey)
		}
		if parsed, err = decodeRatesObject(decoder); err != nil {
			return nil, err
		}
	}

	if err := expectDelim(decoder, '}'); err != nil {
		return nil, errors.Wrap(err, "decode rates body")
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after rates body")
	}
	if parsed == nil {
		return nil, errors.Errorf("missing %q object", ratesKey)
	}

	return parsed, nil
}

const ratesKey = "rates"

func decodeRatesObject(decoder *json.Decoder) (map[string]float64, error) {
	if err := expectDelim(decoder, '{'); err != nil {
		return nil, errors.Wrapf(err, "%q must be an object", ratesKey)
	}

	parsed := make(map[string]float64)
	for decoder.More() {
		code, err := objectKey(decoder)
		if err != nil {
			return nil, errors.Wrap(err, "decode rates")
		}
		if code == "" {
			return nil, errors.New("empty currency code in rates")
		}
		if _, seen := parsed[code]; seen {
			return nil, errors.Errorf("duplicate rate for %s", code)
		}

		var rate float64
		if err := decoder.Decode(&rate); err != nil {
			return nil, errors.Wrapf(err, "rate for %s", code)
		}
		if rate <= 0 || math.IsInf(rate, 0) || math.IsNaN(rate) {
			return nil, errors.Errorf("rate for %s must be positive, got %v", code, rate)
		}
		parsed[code] = rate
	}

	if err := expectDelim(decoder, '}'); err != nil {
		return nil, errors.Wrap(err, "decode rates")
	}
	return parsed, nil
}

func expectDelim(decoder *json.Decoder, want json.Delim) error {
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if delim, ok := token.(json.Delim); !ok || delim != want {
		return errors.Errorf("expected %q, got %v", want, token)
	}
	return nil
}

func objectKey(decoder *json.Decoder) (string, error) {
	token, err := decoder.Token()
	if err != nil {
		return "", err
	}
	key, ok := token.(string)
	if !ok {
		return "", errors.Errorf("expected object key, got %v", token)
	}
	return key, nil
}

func (fetcher *RateFetcher) setInternetAccessible(accessible bool) {
	fetcher.mu.Lock()
	fetcher.internetAccessible = accessible
	fetcher.mu.Unlock()
}

// RedactURL hides query values, which may carry the API key.
func RedactURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	if parsed.RawQuery == "" {
		return parsed.String()
	}
	query := parsed.Query()
	for key := range query {
		query.Set(key, "REDACTED")
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
