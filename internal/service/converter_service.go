package service

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/dalfonso89/currency-converter/internal/currency"
	"github.com/dalfonso89/currency-converter/internal/logger"
	"github.com/dalfonso89/currency-converter/internal/metrics"
	"github.com/dalfonso89/currency-converter/internal/rates"
)

// Connectivity is the indicator shown next to "Internet:".
type Connectivity string

const (
	ConnectivityChecking      Connectivity = "Checking"
	ConnectivityAccessible    Connectivity = "Accessible"
	ConnectivityNotAccessible Connectivity = "Not Accessible"
)

// Status is a point-in-time view of the converter's refresh state.
type Status struct {
	Connectivity Connectivity
	// LastOutcome is nil until the first refresh completes.
	LastOutcome *RefreshOutcome
	RateCount   int
	RatesAsOf   time.Time
}

// ConversionResult is what the shells display for a conversion request.
type ConversionResult struct {
	Amount    float64
	From      string
	To        string
	Converted float64
	Formatted string
	Fallback  bool
}

// ConverterService ties the rate table, the fetcher and status tracking
// together behind the operations both shells need.
type ConverterService struct {
	store    *rates.Store
	fetcher  *RateFetcher
	apiURL   string
	logger   *logrus.Entry
	recorder metrics.Recorder

	refreshGroup singleflight.Group

	statusMutex  sync.RWMutex
	inFlight     int
	cancelFlight context.CancelFunc
	lastOutcome  *RefreshOutcome
}

// ServiceConfig carries the dependencies of a ConverterService.
type ServiceConfig struct {
	Store      *rates.Store
	HTTPClient *http.Client
	APIURL     string
	Logger     *logger.Logger
	Recorder   metrics.Recorder
}

// NewConverterService creates a service. A nil Store gets a fresh empty store
// and a nil Recorder discards metrics.
func NewConverterService(serviceConfig ServiceConfig) *ConverterService {
	store := serviceConfig.Store
	if store == nil {
		store = rates.NewStore()
	}
	recorder := serviceConfig.Recorder
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	return &ConverterService{
		store:    store,
		fetcher:  NewRateFetcher(store, serviceConfig.HTTPClient, serviceConfig.Logger),
		apiURL:   serviceConfig.APIURL,
		logger:   serviceConfig.Logger.Component("converter_service"),
		recorder: recorder,
	}
}

// Currencies returns the fixed, sorted list of selectable codes.
func (converterService *ConverterService) Currencies() []string {
	return currency.Codes()
}

// Rates returns the table currently in effect.
func (converterService *ConverterService) Rates() *rates.Snapshot {
	return converterService.store.Snapshot()
}

// Convert converts amount with the current table. Missing rates fall back to
// returning amount unchanged.
func (converterService *ConverterService) Convert(amount float64, from, to string) ConversionResult {
	from = currency.Normalize(from)
	to = currency.Normalize(to)

	converted, fallback := rates.ConvertWithFallback(amount, from, to, converterService.store.Snapshot())
	converterService.recorder.IncConversion(fallback)

	return ConversionResult{
		Amount:    amount,
		From:      from,
		To:        to,
		Converted: converted,
		Formatted: FormatAmount(converted),
		Fallback:  fallback,
	}
}

// ConvertInput parses amountText and converts it. It returns ErrInvalidAmount
// when the text is not a number; no conversion happens in that case.
func (converterService *ConverterService) ConvertInput(amountText, from, to string) (ConversionResult, error) {
	amount, err := ParseAmount(amountText)
	if err != nil {
		converterService.logger.WithField("input", amountText).Debug("Rejected amount")
		return ConversionResult{}, err
	}
	return converterService.Convert(amount, from, to), nil
}

// errRefreshCancelled marks a shared fetch that was cancelled because every
// waiting caller left.
var errRefreshCancelled = errors.New("shared refresh cancelled")

// Refresh performs one fetch against the configured API. Concurrent callers
// share a single in-flight request and all receive its outcome. A caller whose
// ctx ends stops waiting without touching the shared fetch; the fetch itself is
// cancelled only once no caller is left waiting for it.
func (converterService *ConverterService) Refresh(ctx context.Context) RefreshOutcome {
	converterService.statusMutex.Lock()
	converterService.inFlight++
	converterService.statusMutex.Unlock()

	abandoned := false
	defer func() {
		converterService.leaveRefresh(abandoned)
	}()

	for {
		results := converterService.refreshGroup.DoChan("refresh", converterService.runRefresh)

		select {
		case result := <-results:
			if errors.Is(result.Err, errRefreshCancelled) && ctx.Err() == nil {
				// joined a fetch its earlier callers walked away from
				continue
			}
			if result.Shared {
				converterService.logger.Debug("Joined in-flight refresh")
			}
			return result.Val.(RefreshOutcome)
		case <-ctx.Done():
			abandoned = true
			converterService.logger.WithError(ctx.Err()).Debug("Stopped waiting for refresh")
			return converterService.abandonedOutcome(ctx)
		}
	}
}

func (converterService *ConverterService) runRefresh() (interface{}, error) {
	flightCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	converterService.statusMutex.Lock()
	if converterService.inFlight == 0 {
		cancel()
	}
	converterService.cancelFlight = cancel
	converterService.statusMutex.Unlock()

	outcome := converterService.fetcher.Refresh(flightCtx, converterService.apiURL)
	cancelled := !outcome.Succeeded() && flightCtx.Err() != nil

	converterService.statusMutex.Lock()
	converterService.cancelFlight = nil
	if !cancelled {
		converterService.lastOutcome = &outcome
	}
	converterService.statusMutex.Unlock()

	if cancelled {
		return outcome, errRefreshCancelled
	}

	converterService.recorder.ObserveRefresh(outcome.Kind.String(), outcome.Duration)
	converterService.recorder.SetRatesLoaded(converterService.store.Snapshot().Len())

	return outcome, nil
}

func (converterService *ConverterService) leaveRefresh(abandoned bool) {
	converterService.statusMutex.Lock()
	defer converterService.statusMutex.Unlock()

	converterService.inFlight--
	if abandoned && converterService.inFlight == 0 && converterService.cancelFlight != nil {
		converterService.cancelFlight()
	}
}

// abandonedOutcome answers a caller that stopped waiting. Connectivity is
// reported as it stood; the caller's cancellation says nothing about the API.
func (converterService *ConverterService) abandonedOutcome(ctx context.Context) RefreshOutcome {
	return RefreshOutcome{
		Kind: OutcomeNetworkUnreachable,
		Err: &RefreshError{
			Kind:  OutcomeNetworkUnreachable,
			Cause: errors.Wrap(ctx.Err(), "refresh abandoned"),
		},
		InternetAccessible: converterService.fetcher.InternetAccessible(),
		CompletedAt:        time.Now(),
	}
}

// Status reports connectivity and table state. Connectivity is Checking until
// the first refresh completes and while a refresh is in flight.
func (converterService *ConverterService) Status() Status {
	snapshot := converterService.store.Snapshot()

	converterService.statusMutex.RLock()
	defer converterService.statusMutex.RUnlock()

	status := Status{
		RateCount: snapshot.Len(),
		RatesAsOf: snapshot.UpdatedAt(),
	}

	switch {
	case converterService.lastOutcome == nil || converterService.inFlight > 0:
		status.Connectivity = ConnectivityChecking
	case converterService.lastOutcome.InternetAccessible:
		status.Connectivity = ConnectivityAccessible
	default:
		status.Connectivity = ConnectivityNotAccessible
	}

	if converterService.lastOutcome != nil {
		outcome := *converterService.lastOutcome
		status.LastOutcome = &outcome
	}

	return status
}
