package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"
)

// MinAnomalySamples is the minimum quarterly sample count required before a
// cohort can produce an anomaly alert or a forecast.
const MinAnomalySamples = 3

// BudgetAlert is one spend anomaly for a council or cohort
type BudgetAlert struct {
	Council    string  `json:"council"`
	GroupKey   string  `json:"group_key,omitempty"`
	OutputType string  `json:"output_type,omitempty"`
	Bedrooms   string  `json:"bedrooms,omitempty"`
	Type       string  `json:"type"`
	Deviation  float64 `json:"deviation"`
	Mean       float64 `json:"mean"`
	Std        float64 `json:"std,omitempty"`
	Current    float64 `json:"current"`
	Severity   string  `json:"severity"`
	SampleSize int     `json:"sample_size"`
}

// CouncilForecast is the next-quarter spend projection for one council
type CouncilForecast struct {
	CurrentAvg   float64 `json:"current_avg"`
	NextForecast float64 `json:"next_forecast"`
	Trend        string  `json:"trend"`
	SampleSize   int     `json:"sample_size"`
}

// SpendSeries is an ordered series of quarterly spend totals for one
// grouping key, oldest quarter first.
type SpendSeries struct {
	Key        string
	Council    string
	OutputType string
	Bedrooms   string
	Values     []float64
}

// BudgetAnalytics is the combined anomaly and forecast result
type BudgetAnalytics struct {
	Alerts          []BudgetAlert              `json:"alerts"`
	ForecastSummary map[string]CouncilForecast `json:"forecast_summary"`
}

// Mean returns the arithmetic mean of the samples
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PopulationStd returns the population standard deviation (no Bessel
// correction). The anomaly thresholds depend on this exact definition.
func PopulationStd(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// TrendSlope fits a degree-1 least-squares line over sample index 0..n-1
// and returns its slope.
func TrendSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	xMean := float64(n-1) / 2
	yMean := Mean(values)
	var num, den float64
	for i, v := range values {
		dx := float64(i) - xMean
		num += dx * (v - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func budgetSeverityRank(severity string) int {
	switch severity {
	case "high":
		return 0
	case "medium":
		return 1
	case "low":
		return 2
	default:
		return 3
	}
}

// AnalyzeBudget detects spend anomalies per cohort and forecasts the next
// quarter per council. Cohorts need at least MinAnomalySamples samples and
// non-zero variance to alert; the latest sample is compared against the
// cohort mean at one and two population standard deviations.
func AnalyzeBudget(groups []SpendSeries, councils []SpendSeries) BudgetAnalytics {
	result := BudgetAnalytics{
		ForecastSummary: make(map[string]CouncilForecast),
	}

	for _, series := range groups {
		if len(series.Values) < MinAnomalySamples {
			continue
		}
		std := PopulationStd(series.Values)
		if std <= 0 {
			continue
		}
		mean := Mean(series.Values)
		current := series.Values[len(series.Values)-1]
		deviation := math.Abs(current - mean)

		if deviation > 2*std {
			alertType := "under-spending"
			if current > mean {
				alertType = "over-spending"
			}
			result.Alerts = append(result.Alerts, BudgetAlert{
				Council:    series.Council,
				GroupKey:   series.Key,
				OutputType: series.OutputType,
				Bedrooms:   series.Bedrooms,
				Type:       alertType,
				Deviation:  deviation,
				Mean:       mean,
				Std:        std,
				Current:    current,
				Severity:   "high",
				SampleSize: len(series.Values),
			})
		} else if deviation > std {
			alertType := "reduced spending"
			if current > mean {
				alertType = "elevated spending"
			}
			result.Alerts = append(result.Alerts, BudgetAlert{
				Council:    series.Council,
				GroupKey:   series.Key,
				OutputType: series.OutputType,
				Bedrooms:   series.Bedrooms,
				Type:       alertType,
				Deviation:  deviation,
				Mean:       mean,
				Current:    current,
				Severity:   "medium",
				SampleSize: len(series.Values),
			})
		}
	}

	for _, series := range councils {
		if len(series.Values) < MinAnomalySamples {
			continue
		}
		if PopulationStd(series.Values) <= 0 {
			continue
		}
		slope := TrendSlope(series.Values)
		forecast := series.Values[len(series.Values)-1] + slope
		trend := "decreasing"
		if slope > 0 {
			trend = "increasing"
		}
		result.ForecastSummary[series.Council] = CouncilForecast{
			CurrentAvg:   Mean(series.Values),
			NextForecast: math.Max(0, forecast),
			Trend:        trend,
			SampleSize:   len(series.Values),
		}
	}

	sort.SliceStable(result.Alerts, func(i, j int) bool {
		return budgetSeverityRank(result.Alerts[i].Severity) < budgetSeverityRank(result.Alerts[j].Severity)
	})

	return result
}

// AnalysisQuarters returns the 6 most recent calendar quarters ending at the
// quarter containing analysisDate, oldest first. Each element is the
// inclusive [start, end] of one quarter.
func AnalysisQuarters(analysisDate time.Time) [][2]time.Time {
	quarters := make([][2]time.Time, 0, 6)
	startMonth := time.Month(((int(analysisDate.Month())-1)/3)*3 + 1)
	start := time.Date(analysisDate.Year(), startMonth, 1, 0, 0, 0, 0, analysisDate.Location())
	for i := 0; i < 6; i++ {
		end := start.AddDate(0, 3, -1)
		quarters = append(quarters, [2]time.Time{start, end})
		start = start.AddDate(0, -3, 0)
	}
	// Built newest-first above; flip to oldest-first
	for i, j := 0, len(quarters)-1; i < j; i, j = i+1, j-1 {
		quarters[i], quarters[j] = quarters[j], quarters[i]
	}
	return quarters
}

type quarterSpendRow struct {
	CouncilName  *string
	OutputTypeID *uint
	Bedrooms     *int
	TotalSpent   *float64
}

// CollectQuarterlySpending aggregates quarterly expenditure over the last 6
// quarters, grouped by council and by council x output type x bedrooms
// cohort, preserving first-appearance order so repeated runs rank alerts
// identically.
func CollectQuarterlySpending(db *gorm.DB, projectIDs []uint, analysisDate time.Time) (groups []SpendSeries, councils []SpendSeries, err error) {
	groupIndex := make(map[string]int)
	councilIndex := make(map[string]int)

	for _, quarter := range AnalysisQuarters(analysisDate) {
		var rows []quarterSpendRow
		err = db.Raw(`
			SELECT council.name AS council_name,
			       work.output_type_id AS output_type_id,
			       work.bedrooms AS bedrooms,
			       SUM(quarterly_report.total_expenditure_council) AS total_spent
			FROM quarterly_report
			JOIN work ON work.id = quarterly_report.work_id
			JOIN address ON address.id = work.address_id
			JOIN project ON project.id = address.project_id
			LEFT JOIN council ON council.id = project.council_id
			WHERE quarterly_report.submission_date BETWEEN ? AND ?
			  AND project.id IN ?
			GROUP BY council.name, work.output_type_id, work.bedrooms
			ORDER BY council.name, work.output_type_id, work.bedrooms`,
			quarter[0], quarter[1], projectIDs).Scan(&rows).Error
		if err != nil {
			return nil, nil, err
		}

		for _, row := range rows {
			councilName := "Unknown Council"
			if row.CouncilName != nil && *row.CouncilName != "" {
				councilName = *row.CouncilName
			}
			outputType := "unknown"
			if row.OutputTypeID != nil {
				outputType = fmt.Sprintf("%d", *row.OutputTypeID)
			}
			bedrooms := "unknown"
			if row.Bedrooms != nil {
				bedrooms = fmt.Sprintf("%d", *row.Bedrooms)
			}
			spent := 0.0
			if row.TotalSpent != nil {
				spent = *row.TotalSpent
			}

			key := fmt.Sprintf("%s_%s_%s", councilName, outputType, bedrooms)
			idx, ok := groupIndex[key]
			if !ok {
				idx = len(groups)
				groupIndex[key] = idx
				groups = append(groups, SpendSeries{
					Key:        key,
					Council:    councilName,
					OutputType: outputType,
					Bedrooms:   bedrooms,
				})
			}
			groups[idx].Values = append(groups[idx].Values, spent)

			cidx, ok := councilIndex[councilName]
			if !ok {
				cidx = len(councils)
				councilIndex[councilName] = cidx
				councils = append(councils, SpendSeries{Key: councilName, Council: councilName})
			}
			councils[cidx].Values = append(councils[cidx].Values, spent)
		}
	}

	return groups, councils, nil
}
