package repository

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"portal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"gorm.io/gorm"
)

// ErrEntryNotFound is returned when a workflow action names a missing entry
var ErrEntryNotFound = errors.New("entry not found")

// LoadReportConfiguration fetches a project's report configuration with all
// group sets preloaded. Returns (nil, nil) when no configuration exists.
func LoadReportConfiguration(db *gorm.DB, projectID uint) (*models.ProjectReportConfiguration, error) {
	var config models.ProjectReportConfiguration
	err := db.
		Preload("MonthlyTrackerGroups.Items").
		Preload("QuarterlyReportGroups.Items").
		Preload("Stage1StepGroups.Steps").
		Preload("Stage2StepGroups.Steps").
		Where("project_id = ?", projectID).
		First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// MonthlyItemApplicable decides whether a monthly tracker item applies to a
// project. Monthly items default to applicable when no configuration exists
// (opt-out), unlike the quarterly and stage policies below which are strict
// opt-in. The divergence matches observed production behavior and must not
// be unified without a product decision.
func MonthlyItemApplicable(config *models.ProjectReportConfiguration, itemID uint) bool {
	if config == nil {
		return true
	}
	for _, group := range config.MonthlyTrackerGroups {
		for _, item := range group.Items {
			if item.ID == itemID {
				return true
			}
		}
	}
	return false
}

// QuarterlyItemApplicable decides whether a quarterly report item applies to
// a project. No configuration means not applicable (strict opt-in).
func QuarterlyItemApplicable(config *models.ProjectReportConfiguration, itemID uint) bool {
	if config == nil {
		return false
	}
	for _, group := range config.QuarterlyReportGroups {
		for _, item := range group.Items {
			if item.ID == itemID {
				return true
			}
		}
	}
	return false
}

// Stage1StepApplicable decides whether a stage 1 step applies to a project.
// No configuration means not applicable (strict opt-in).
func Stage1StepApplicable(config *models.ProjectReportConfiguration, stepID uint) bool {
	if config == nil {
		return false
	}
	for _, group := range config.Stage1StepGroups {
		for _, step := range group.Steps {
			if step.ID == stepID {
				return true
			}
		}
	}
	return false
}

// Stage2StepApplicable decides whether a stage 2 step applies to a project
func Stage2StepApplicable(config *models.ProjectReportConfiguration, stepID uint) bool {
	if config == nil {
		return false
	}
	for _, group := range config.Stage2StepGroups {
		for _, step := range group.Steps {
			if step.ID == stepID {
				return true
			}
		}
	}
	return false
}

// FormatItemValue renders a stored entry value for display per the item's
// data type: dates as dd/mm/yyyy, currency as $#,##0.00, checkboxes as
// tick/cross. Empty values render as the empty string.
func FormatItemValue(value *string, dataType string) string {
	if value == nil || *value == "" {
		return ""
	}
	raw := *value

	switch dataType {
	case models.DataTypeDate:
		datePart := strings.SplitN(raw, "T", 2)[0]
		t, err := time.Parse("2006-01-02", datePart)
		if err != nil {
			return raw
		}
		return t.Format("02/01/2006")
	case models.DataTypeCurrency:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw
		}
		return FormatCurrency(f)
	case models.DataTypeCheckbox:
		if ValueIsChecked(raw) {
			return "✓"
		}
		return "✗"
	default:
		return raw
	}
}

// ValueIsChecked interprets a stored checkbox value
func ValueIsChecked(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

var enAU = language.MustParse("en-AU")

var currencyPrinter = message.NewPrinter(enAU)

// FormatCurrency renders an amount as $#,##0.00
func FormatCurrency(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	out := currencyPrinter.Sprintf("$%v", number.Decimal(amount, number.Scale(2)))
	if neg {
		return "-" + out
	}
	return out
}

// emptyCell is the fallback when no record exists: N/A when acceptable,
// blank otherwise. The item is still applicable in both cases.
func emptyCell(naAcceptable bool) models.TrackerCell {
	if naAcceptable {
		na := "N/A"
		return models.TrackerCell{Applicable: true, Value: &na, Display: "N/A"}
	}
	return models.TrackerCell{Applicable: true, Display: ""}
}

func notApplicableCell() models.TrackerCell {
	return models.TrackerCell{Applicable: false, Display: ""}
}

// ResolveMonthlyCell resolves one (work, tracker item) cell of the enhanced
// monthly table. The latest tracker record is used; when none exists and the
// project has physically commenced, a record for the current month is created
// with zeroed figures. Entries are created lazily in draft with no value.
// Any failure is logged and renders the cell as not applicable without
// aborting the table.
func ResolveMonthlyCell(db *gorm.DB, config *models.ProjectReportConfiguration, work *models.Work, project *models.Project, item *models.MonthlyTrackerItem, now time.Time) models.TrackerCell {
	if !MonthlyItemApplicable(config, item.ID) {
		return notApplicableCell()
	}

	var tracker models.MonthlyTracker
	err := db.Where("work_id = ?", work.ID).Order("month DESC").First(&tracker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if !project.HasCommenced() {
			return emptyCell(item.NAAcceptable)
		}
		zero := 0.0
		cost := zero
		if work.EstimatedCost != nil {
			cost = *work.EstimatedCost
		}
		tracker = models.MonthlyTracker{
			WorkID:                   work.ID,
			Month:                    models.MonthStart(now),
			PercentageWorksCompleted: &zero,
			TotalConstructionCost:    &cost,
			TotalExpenditureCouncil:  &zero,
			TotalExpenditureRICD:     &zero,
		}
		if err := db.Create(&tracker).Error; err != nil {
			log.Printf("monthly cell: work %d item %d: create tracker failed: %v", work.ID, item.ID, err)
			return notApplicableCell()
		}
	} else if err != nil {
		log.Printf("monthly cell: work %d item %d: %v", work.ID, item.ID, err)
		return notApplicableCell()
	}

	var entry models.MonthlyTrackerEntry
	err = db.Where("monthly_tracker_id = ? AND tracker_item_id = ?", tracker.ID, item.ID).First(&entry).Error
	if err == nil {
		return models.TrackerCell{
			Applicable: true,
			Value:      entry.Value,
			Display:    FormatItemValue(entry.Value, item.DataType),
			EntryID:    entry.ID,
			HasData:    entry.Value != nil,
		}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("monthly cell: work %d item %d: %v", work.ID, item.ID, err)
		return notApplicableCell()
	}

	if !item.IsActive {
		return emptyCell(item.NAAcceptable)
	}
	entry = models.MonthlyTrackerEntry{
		MonthlyTrackerID: tracker.ID,
		TrackerItemID:    item.ID,
		WorkflowStatus:   models.WorkflowDraft,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("monthly cell: work %d item %d: create entry failed: %v", work.ID, item.ID, err)
		return notApplicableCell()
	}
	return models.TrackerCell{Applicable: true, EntryID: entry.ID, Display: ""}
}

// ResolveQuarterlyCell resolves one (work, report item) cell of the enhanced
// quarterly table. Mirrors ResolveMonthlyCell with quarter-start anchoring.
func ResolveQuarterlyCell(db *gorm.DB, config *models.ProjectReportConfiguration, work *models.Work, project *models.Project, item *models.QuarterlyReportItem, now time.Time) models.TrackerCell {
	if !QuarterlyItemApplicable(config, item.ID) {
		return notApplicableCell()
	}

	var report models.QuarterlyReport
	err := db.Where("work_id = ?", work.ID).Order("submission_date DESC").First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if !project.HasCommenced() {
			return emptyCell(item.NAAcceptable)
		}
		zero := 0.0
		report = models.QuarterlyReport{
			WorkID:                   work.ID,
			SubmissionDate:           models.QuarterStart(now),
			PercentageWorksCompleted: &zero,
			TotalExpenditureCouncil:  &zero,
			UnspentFundingAmount:     &zero,
		}
		if err := db.Create(&report).Error; err != nil {
			log.Printf("quarterly cell: work %d item %d: create report failed: %v", work.ID, item.ID, err)
			return notApplicableCell()
		}
	} else if err != nil {
		log.Printf("quarterly cell: work %d item %d: %v", work.ID, item.ID, err)
		return notApplicableCell()
	}

	var entry models.QuarterlyReportItemEntry
	err = db.Where("quarterly_report_id = ? AND report_item_id = ?", report.ID, item.ID).First(&entry).Error
	if err == nil {
		return models.TrackerCell{
			Applicable: true,
			Value:      entry.Value,
			Display:    FormatItemValue(entry.Value, item.DataType),
			EntryID:    entry.ID,
			HasData:    entry.Value != nil,
		}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("quarterly cell: work %d item %d: %v", work.ID, item.ID, err)
		return notApplicableCell()
	}

	if !item.IsActive {
		return emptyCell(item.NAAcceptable)
	}
	entry = models.QuarterlyReportItemEntry{
		QuarterlyReportID: report.ID,
		ReportItemID:      item.ID,
		WorkflowStatus:    models.WorkflowDraft,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("quarterly cell: work %d item %d: create entry failed: %v", work.ID, item.ID, err)
		return notApplicableCell()
	}
	return models.TrackerCell{Applicable: true, EntryID: entry.ID, Display: ""}
}

// ArchiveOrphanedMonthlyEntries archives a council's tracker entries that
// were not part of the latest table render, typically because their work was
// removed from the project. Entries are never hard-deleted so the audit
// trail survives work removal.
func ArchiveOrphanedMonthlyEntries(db *gorm.DB, councilID uint, activeEntryIDs map[uint]bool) (int64, error) {
	var allIDs []uint
	err := db.Model(&models.MonthlyTrackerEntry{}).
		Joins("JOIN monthly_tracker ON monthly_tracker.id = monthly_tracker_entry.monthly_tracker_id").
		Joins("JOIN work ON work.id = monthly_tracker.work_id").
		Joins("JOIN address ON address.id = work.address_id").
		Joins("JOIN project ON project.id = address.project_id").
		Where("project.council_id = ?", councilID).
		Pluck("monthly_tracker_entry.id", &allIDs).Error
	if err != nil {
		return 0, err
	}

	var orphaned []uint
	for _, id := range allIDs {
		if !activeEntryIDs[id] {
			orphaned = append(orphaned, id)
		}
	}
	if len(orphaned) == 0 {
		return 0, nil
	}

	res := db.Model(&models.MonthlyTrackerEntry{}).
		Where("id IN ?", orphaned).
		Update("workflow_status", models.WorkflowArchived)
	return res.RowsAffected, res.Error
}

// ArchiveOrphanedQuarterlyEntries mirrors the monthly cleanup for the
// quarterly entry table.
func ArchiveOrphanedQuarterlyEntries(db *gorm.DB, councilID uint, activeEntryIDs map[uint]bool) (int64, error) {
	var allIDs []uint
	err := db.Model(&models.QuarterlyReportItemEntry{}).
		Joins("JOIN quarterly_report ON quarterly_report.id = quarterly_report_item_entry.quarterly_report_id").
		Joins("JOIN work ON work.id = quarterly_report.work_id").
		Joins("JOIN address ON address.id = work.address_id").
		Joins("JOIN project ON project.id = address.project_id").
		Where("project.council_id = ?", councilID).
		Pluck("quarterly_report_item_entry.id", &allIDs).Error
	if err != nil {
		return 0, err
	}

	var orphaned []uint
	for _, id := range allIDs {
		if !activeEntryIDs[id] {
			orphaned = append(orphaned, id)
		}
	}
	if len(orphaned) == 0 {
		return 0, nil
	}

	res := db.Model(&models.QuarterlyReportItemEntry{}).
		Where("id IN ?", orphaned).
		Update("workflow_status", models.WorkflowArchived)
	return res.RowsAffected, res.Error
}
