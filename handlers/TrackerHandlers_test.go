package handlers

import (
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"portal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTrackerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A fresh in-memory database exists per connection; pin to one
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.MonthlyTracker{}, &models.MonthlyTrackerEntry{}))
	return db
}

func formValue(s string) *string { return &s }

func TestParseBulkForm(t *testing.T) {
	t.Run("groups fields by entry token", func(t *testing.T) {
		form := url.Values{
			"form-42-value": {"2024-08-01"},
			"form-43-value": {"450000"},
			"csrf_token":    {"abc"},
			"action":        {"save"},
		}
		updates := parseBulkForm(form)
		require.Len(t, updates, 2)
		require.NotNil(t, updates["42"].value)
		assert.Equal(t, "2024-08-01", *updates["42"].value)
		require.NotNil(t, updates["43"].value)
		assert.Equal(t, "450000", *updates["43"].value)
	})

	t.Run("new token carries tracker and item ids", func(t *testing.T) {
		form := url.Values{
			"form-new-value":      {"yes"},
			"form-new-tracker_id": {"7"},
			"form-new-item_id":    {"3"},
		}
		updates := parseBulkForm(form)
		require.Len(t, updates, 1)
		update := updates["new"]
		require.NotNil(t, update)
		assert.Equal(t, "yes", *update.value)
		assert.Equal(t, uint(7), update.trackerID)
		assert.Equal(t, uint(3), update.itemID)
	})

	t.Run("malformed keys are skipped", func(t *testing.T) {
		form := url.Values{
			"form-":            {"x"},
			"form-value":       {"x"},
			"unrelated-1-name": {"x"},
		}
		assert.Empty(t, parseBulkForm(form))
	})

	t.Run("unparseable ids leave zero values", func(t *testing.T) {
		form := url.Values{
			"form-new-value":      {"yes"},
			"form-new-tracker_id": {"seven"},
		}
		updates := parseBulkForm(form)
		require.Len(t, updates, 1)
		assert.Zero(t, updates["new"].trackerID)
	})
}

func TestApplyBulkMonthlyUpdates(t *testing.T) {
	db := newTrackerTestDB(t)
	now := time.Date(2024, 8, 20, 10, 0, 0, 0, time.UTC)

	tracker := models.MonthlyTracker{WorkID: 1, Month: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, db.Create(&tracker).Error)
	existing := models.MonthlyTrackerEntry{
		MonthlyTrackerID: tracker.ID,
		TrackerItemID:    5,
		WorkflowStatus:   models.WorkflowDraft,
	}
	require.NoError(t, db.Create(&existing).Error)

	updates := map[string]*entryUpdate{
		strconv.Itoa(int(existing.ID)): {value: formValue("2024-08-01")},
		"9999":                         {value: formValue("orphan value")},
		"new":                          {value: formValue("yes"), trackerID: tracker.ID, itemID: 6},
		"new-2":                        {value: formValue("no ids supplied")},
		"untouched":                    {},
	}

	resp := applyBulkMonthlyUpdates(db, updates, now)

	// One bad cell never blocks the rest of the batch
	assert.Equal(t, 2, resp.SuccessCount)
	assert.Equal(t, 2, resp.ErrorCount)
	require.Len(t, resp.Errors, 2)
	allErrors := strings.Join(resp.Errors, "; ")
	assert.Contains(t, allErrors, "not found")
	assert.Contains(t, allErrors, "missing tracker_id")

	var saved models.MonthlyTrackerEntry
	require.NoError(t, db.First(&saved, existing.ID).Error)
	require.NotNil(t, saved.Value)
	assert.Equal(t, "2024-08-01", *saved.Value)

	var created models.MonthlyTrackerEntry
	require.NoError(t, db.Where("tracker_item_id = ?", 6).First(&created).Error)
	assert.Equal(t, models.WorkflowDraft, created.WorkflowStatus)
	assert.Equal(t, tracker.ID, created.MonthlyTrackerID)

	var entries int64
	require.NoError(t, db.Model(&models.MonthlyTrackerEntry{}).Count(&entries).Error)
	assert.EqualValues(t, 2, entries)

	var stamped models.MonthlyTracker
	require.NoError(t, db.First(&stamped, tracker.ID).Error)
	require.NotNil(t, stamped.SubmissionDate)
	assert.True(t, stamped.SubmissionDate.Equal(now))
}
