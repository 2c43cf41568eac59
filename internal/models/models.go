package models

import "time"

// ConvertQuery is bound from the query string of GET /api/v1/convert
type ConvertQuery struct {
	Amount string `form:"amount" binding:"required"`
	From   string `form:"from" binding:"required"`
	To     string `form:"to" binding:"required"`
}

type ConvertResponse struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    float64 `json:"amount"`
	Converted float64 `json:"converted"`
	Formatted string  `json:"formatted"`
	Result    string  `json:"result"`
	Fallback  bool    `json:"fallback"`
}

type RatesResponse struct {
	Rates     map[string]float64 `json:"rates"`
	Count     int                `json:"count"`
	UpdatedAt *time.Time         `json:"updated_at,omitempty"`
}

type RefreshResponse struct {
	Outcome            string    `json:"outcome"`
	StatusCode         int       `json:"status_code,omitempty"`
	RateCount          int       `json:"rate_count"`
	InternetAccessible bool      `json:"internet_accessible"`
	Error              string    `json:"error,omitempty"`
	CompletedAt        time.Time `json:"completed_at"`
}

type StatusResponse struct {
	Internet    string           `json:"internet"`
	RateCount   int              `json:"rate_count"`
	RatesAsOf   *time.Time       `json:"rates_as_of,omitempty"`
	LastRefresh *RefreshResponse `json:"last_refresh,omitempty"`
}

type CurrenciesResponse struct {
	Currencies []string `json:"currencies"`
	Count      int      `json:"count"`
}

type HealthCheck struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
