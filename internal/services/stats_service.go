package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anirame128/fortnite-insight-dashboard/internal/aggregation"
	"github.com/anirame128/fortnite-insight-dashboard/internal/analytics/forecast"
	"github.com/anirame128/fortnite-insight-dashboard/internal/config"
	"github.com/anirame128/fortnite-insight-dashboard/internal/extraction"
	"github.com/anirame128/fortnite-insight-dashboard/internal/logging"
	"github.com/anirame128/fortnite-insight-dashboard/internal/metrics"
	"github.com/anirame128/fortnite-insight-dashboard/internal/models"
	"github.com/anirame128/fortnite-insight-dashboard/internal/queue"
	"github.com/anirame128/fortnite-insight-dashboard/internal/utils"
)

// Messages shown to end users
const (
	msgMissingCode = "Map code is required"
	msgFetchFailed = "Failed to fetch map statistics"
)

// StatsService handles the stats lookup: extraction, daily aggregation,
// forecasting and the "stats computed" event
type StatsService struct {
	logger        *logging.Logger
	client        extraction.Client
	aggregator    *aggregation.DailyAggregator
	params        forecast.Params
	defaultMethod string
	events        *queue.EventPublisher
}

// NewStatsService creates a new StatsService. events may be nil, in which
// case nothing is published.
func NewStatsService(
	logger *logging.Logger,
	client extraction.Client,
	cfg config.StatsConfig,
	events *queue.EventPublisher,
) *StatsService {
	if logger == nil {
		logger = logging.Global()
	}

	loc := cfg.Location()
	params := forecast.Params{
		Horizon:       cfg.Horizon,
		Alpha:         cfg.Alpha,
		Beta:          cfg.Beta,
		Gamma:         cfg.Gamma,
		SeasonLength:  cfg.SeasonLength,
		ClampNegative: cfg.ClampNegative,
		Location:      loc,
	}

	method := cfg.Method
	if method == "" {
		method = "holt_winters"
	}

	return &StatsService{
		logger:        logger,
		client:        client,
		aggregator:    aggregation.NewDailyAggregator(loc),
		params:        params,
		defaultMethod: method,
		events:        events,
	}
}

// StatsRequest represents a stats request
type StatsRequest struct {
	MapCode string
	Method  string // forecaster name, the configured default when empty
}

// Execute looks up one map and returns its daily history and forecast
func (s *StatsService) Execute(ctx context.Context, req *StatsRequest) (*models.StatsResponse, error) {
	startExec := time.Now()

	mapCode := strings.TrimSpace(req.MapCode)
	if mapCode == "" {
		return nil, NewServiceError(http.StatusBadRequest, CodeMissingParameter, msgMissingCode)
	}
	if err := extraction.ValidateMapCode(mapCode); err != nil {
		return nil, &ServiceError{
			Code:    CodeInvalidInput,
			Message: err.Error(),
			Status:  http.StatusBadRequest,
			Err:     err,
		}
	}

	method := req.Method
	if method == "" {
		method = s.defaultMethod
	}
	forecaster, err := forecast.GetForecaster(method)
	if err != nil {
		return nil, &ServiceError{
			Code:    CodeInvalidMethod,
			Message: err.Error(),
			Status:  http.StatusBadRequest,
			Details: map[string]interface{}{
				"available_methods": forecast.ListForecasters(),
			},
		}
	}

	series, err := s.client.FetchSeries(ctx, mapCode)
	if err != nil {
		return nil, s.fetchError(mapCode, err)
	}

	peaks := s.aggregator.Aggregate(series.Series)
	labels, values, timestamps := aggregation.Split(peaks)
	summary := aggregation.Summarize(peaks, series.CurrentPlayers, series.HasCurrent)

	result, err := forecaster.Forecast(values, timestamps, s.params)
	if err != nil {
		s.logger.Error("Forecast rejected aggregated series",
			"map_code", mapCode,
			"method", method,
			"days", len(values),
			"error", err)
		return nil, &ServiceError{
			Code:    CodeInternal,
			Message: "Failed to compute forecast",
			Status:  http.StatusInternalServerError,
			Err:     err,
		}
	}
	metrics.ObserveForecast(result.Info.Algorithm, result.Info.Regime)

	resp := &models.StatsResponse{
		MapCode:        mapCode,
		CurrentPlayers: summary.CurrentPlayers,
		Peak24h:        summary.Peak24h,
		DailyGain:      summary.DailyGain,
		Labels:         labels,
		DailyHistory:   values,
		Timestamps:     timestamps,
		Forecast:       result,
	}

	s.publish(ctx, series, resp)

	latency := time.Since(startExec)
	s.logger.Info("Stats completed",
		"map_code", mapCode,
		"resource_id", series.ResourceID,
		"method", method,
		"regime", result.Info.Regime,
		"samples", len(series.Series.Values),
		"days", len(peaks),
		"latency_ms", latency.Milliseconds())

	return resp, nil
}

// fetchError converts an extraction failure into the client-facing error.
// ResourceIDNotFound and MalformedPayload are already logged with detail by
// the client; the caller only sees the generic message.
func (s *StatsService) fetchError(mapCode string, err error) *ServiceError {
	var extErr *extraction.Error
	if !errors.As(err, &extErr) {
		s.logger.Error("Unexpected extraction failure", "map_code", mapCode, "error", err)
		return &ServiceError{Code: CodeFetchFailed, Message: msgFetchFailed, Status: http.StatusBadGateway, Err: err}
	}

	switch extErr.Kind {
	case extraction.KindInvalidInput:
		return &ServiceError{Code: CodeInvalidInput, Message: extErr.Error(), Status: http.StatusBadRequest, Err: err}

	case extraction.KindUpstreamUnavailable:
		msg := "Upstream statistics service unavailable"
		details := map[string]interface{}{}
		if extErr.StatusCode != 0 {
			msg = fmt.Sprintf("Upstream statistics service returned status %d", extErr.StatusCode)
			details["upstream_status"] = extErr.StatusCode
		}
		return &ServiceError{
			Code:    CodeUpstreamUnavailable,
			Message: msg,
			Details: details,
			Status:  http.StatusBadGateway,
			Err:     err,
		}

	default:
		return &ServiceError{Code: CodeFetchFailed, Message: msgFetchFailed, Status: http.StatusBadGateway, Err: err}
	}
}

// publish emits the stats event. A publish failure is logged and never fails
// the request.
func (s *StatsService) publish(ctx context.Context, series *models.MapSeries, resp *models.StatsResponse) {
	if s.events == nil {
		return
	}

	event := models.StatsEvent{
		ID:             uuid.New().String(),
		RequestID:      logging.RequestID(ctx),
		MapCode:        resp.MapCode,
		ResourceID:     series.ResourceID,
		ComputedAt:     time.Now().UTC(),
		CurrentPlayers: resp.CurrentPlayers,
		Peak24h:        resp.Peak24h,
		DailyGain:      resp.DailyGain,
		Days:           len(resp.DailyHistory),
		Algorithm:      resp.Forecast.Info.Algorithm,
		Regime:         resp.Forecast.Info.Regime,
	}
	if len(resp.Forecast.Values) > 1 {
		event.NextDay = resp.Forecast.Values[1]
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), utils.PublishTimeout)
	defer cancel()

	err := s.events.Publish(pubCtx, event.MapCode, event)
	metrics.ObservePublish(err)
	if err != nil {
		s.logger.Warn("Failed to publish stats event",
			"map_code", event.MapCode,
			"subject", s.events.Subject(),
			"error", err)
	}
}
