package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanAndPopulationStd(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, PopulationStd(nil))

	values := []float64{100, 100, 100, 100, 100, 500}
	assert.InDelta(t, 166.667, Mean(values), 0.01)
	// Population std, no Bessel correction: sqrt(133333.3/6)
	assert.InDelta(t, 149.07, PopulationStd(values), 0.01)
}

func TestTrendSlope(t *testing.T) {
	assert.Equal(t, 0.0, TrendSlope([]float64{42}))
	assert.InDelta(t, 100.0, TrendSlope([]float64{100, 200, 300}), 0.001)
	assert.InDelta(t, -145.0, TrendSlope([]float64{300, 150, 10}), 0.001)
}

func TestAnalyzeBudgetAnomalies(t *testing.T) {
	t.Run("spike beyond two std is a high over-spending alert", func(t *testing.T) {
		groups := []SpendSeries{{
			Key:     "Palm Island_1_3",
			Council: "Palm Island",
			Values:  []float64{100, 100, 100, 100, 100, 500},
		}}
		result := AnalyzeBudget(groups, nil)

		require.Len(t, result.Alerts, 1)
		alert := result.Alerts[0]
		assert.Equal(t, "over-spending", alert.Type)
		assert.Equal(t, "high", alert.Severity)
		assert.Equal(t, "Palm Island", alert.Council)
		assert.Equal(t, 500.0, alert.Current)
		assert.InDelta(t, 166.667, alert.Mean, 0.01)
		assert.InDelta(t, 333.333, alert.Deviation, 0.01)
		assert.Equal(t, 6, alert.SampleSize)
	})

	t.Run("drop beyond two std is under-spending", func(t *testing.T) {
		groups := []SpendSeries{{
			Key:     "Hope Vale_1_3",
			Council: "Hope Vale",
			Values:  []float64{500, 500, 500, 500, 500, 100},
		}}
		result := AnalyzeBudget(groups, nil)

		require.Len(t, result.Alerts, 1)
		assert.Equal(t, "under-spending", result.Alerts[0].Type)
		assert.Equal(t, "high", result.Alerts[0].Severity)
	})

	t.Run("deviation between one and two std is medium", func(t *testing.T) {
		// mean 107.5, std ~12.99, deviation 22.5
		groups := []SpendSeries{{
			Key:     "Yarrabah_2_4",
			Council: "Yarrabah",
			Values:  []float64{100, 100, 100, 130},
		}}
		result := AnalyzeBudget(groups, nil)

		require.Len(t, result.Alerts, 1)
		assert.Equal(t, "elevated spending", result.Alerts[0].Type)
		assert.Equal(t, "medium", result.Alerts[0].Severity)
	})

	t.Run("fewer than minimum samples never alerts", func(t *testing.T) {
		groups := []SpendSeries{{
			Key:     "Doomadgee_1_2",
			Council: "Doomadgee",
			Values:  []float64{100, 10000},
		}}
		result := AnalyzeBudget(groups, nil)
		assert.Empty(t, result.Alerts)
	})

	t.Run("zero variance never alerts", func(t *testing.T) {
		groups := []SpendSeries{{
			Key:     "Woorabinda_1_2",
			Council: "Woorabinda",
			Values:  []float64{250, 250, 250, 250},
		}}
		result := AnalyzeBudget(groups, nil)
		assert.Empty(t, result.Alerts)
	})

	t.Run("alerts sort high before medium", func(t *testing.T) {
		groups := []SpendSeries{
			{Key: "medium", Council: "Yarrabah", Values: []float64{100, 100, 100, 130}},
			{Key: "high", Council: "Palm Island", Values: []float64{100, 100, 100, 100, 100, 500}},
		}
		result := AnalyzeBudget(groups, nil)

		require.Len(t, result.Alerts, 2)
		assert.Equal(t, "high", result.Alerts[0].Severity)
		assert.Equal(t, "medium", result.Alerts[1].Severity)
	})
}

func TestAnalyzeBudgetForecasts(t *testing.T) {
	t.Run("increasing trend projects last value plus slope", func(t *testing.T) {
		councils := []SpendSeries{{
			Key:     "Palm Island",
			Council: "Palm Island",
			Values:  []float64{100, 200, 300},
		}}
		result := AnalyzeBudget(nil, councils)

		forecast, ok := result.ForecastSummary["Palm Island"]
		require.True(t, ok)
		assert.Equal(t, "increasing", forecast.Trend)
		assert.InDelta(t, 400.0, forecast.NextForecast, 0.001)
		assert.InDelta(t, 200.0, forecast.CurrentAvg, 0.001)
		assert.Equal(t, 3, forecast.SampleSize)
	})

	t.Run("forecast never goes below zero", func(t *testing.T) {
		councils := []SpendSeries{{
			Key:     "Hope Vale",
			Council: "Hope Vale",
			Values:  []float64{300, 150, 10},
		}}
		result := AnalyzeBudget(nil, councils)

		forecast, ok := result.ForecastSummary["Hope Vale"]
		require.True(t, ok)
		assert.Equal(t, "decreasing", forecast.Trend)
		assert.Equal(t, 0.0, forecast.NextForecast)
	})

	t.Run("short or flat series produce no forecast", func(t *testing.T) {
		councils := []SpendSeries{
			{Key: "Short", Council: "Short", Values: []float64{100, 200}},
			{Key: "Flat", Council: "Flat", Values: []float64{100, 100, 100}},
		}
		result := AnalyzeBudget(nil, councils)
		assert.Empty(t, result.ForecastSummary)
	})
}

func TestAnalysisQuarters(t *testing.T) {
	quarters := AnalysisQuarters(time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC))

	require.Len(t, quarters, 6)
	assert.Equal(t, time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), quarters[0][0])
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), quarters[5][0])
	assert.Equal(t, time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC), quarters[5][1])

	for i := 1; i < len(quarters); i++ {
		assert.True(t, quarters[i][0].After(quarters[i-1][0]), "quarters must be oldest first")
	}
}
