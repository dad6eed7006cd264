package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"portal/models"
	"portal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func documentDir() string {
	if dir := os.Getenv("DOCUMENT_DIR"); dir != "" {
		return dir
	}
	return "/var/www/ricdportal/documents/"
}

// saveUploadedDocument stores one multipart file under documentDir with a
// timestamp prefix and returns the stored name.
func saveUploadedDocument(c *gin.Context) (string, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return "", fmt.Errorf("file field is required: %w", err)
	}

	filename := filepath.Base(file.Filename)
	if filename == "" || filename == "." || strings.Contains(filename, "..") {
		return "", fmt.Errorf("invalid file name")
	}

	dir := documentDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating document dir: %w", err)
	}

	storedName := fmt.Sprintf("%d_%s", time.Now().Unix(), filename)
	if err := c.SaveUploadedFile(file, filepath.Join(dir, storedName)); err != nil {
		return "", fmt.Errorf("saving file: %w", err)
	}
	return storedName, nil
}

// UploadEntryDocumentHandler godoc
// @Summary      Attach a supporting document to a report entry
// @Description  Uploads a file and links it to a monthly tracker or quarterly report entry. The kind path segment is "monthly" or "quarterly".
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Param        kind      path      string  true  "monthly or quarterly"
// @Param        entry_id  path      int     true  "Entry ID"
// @Param        file      formData  file    true  "Document"
// @Success      200       {object}  object
// @Failure      400       {object}  utils.Response
// @Failure      404       {object}  utils.Response
// @Security     BearerAuth
// @Router       /api/entries/{kind}/{entry_id}/document [post]
func UploadEntryDocumentHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}

		entryID, err := strconv.ParseUint(c.Param("entry_id"), 10, 64)
		if err != nil {
			utils.ErrorResponse(c, "Invalid entry id", 400)
			return
		}

		kind := c.Param("kind")
		var updateErr error
		switch kind {
		case "monthly":
			var entry models.MonthlyTrackerEntry
			if err := gdb.First(&entry, uint(entryID)).Error; err != nil {
				utils.ErrorResponse(c, "Entry not found", 404)
				return
			}
			storedName, err := saveUploadedDocument(c)
			if err != nil {
				utils.ErrorResponse(c, err.Error(), 400)
				return
			}
			entry.SupportingDocument = storedName
			updateErr = gdb.Save(&entry).Error
			if updateErr == nil {
				c.JSON(200, gin.H{"message": "Document attached", "file": storedName, "entry_id": entry.ID})
				return
			}
		case "quarterly":
			var entry models.QuarterlyReportItemEntry
			if err := gdb.First(&entry, uint(entryID)).Error; err != nil {
				utils.ErrorResponse(c, "Entry not found", 404)
				return
			}
			storedName, err := saveUploadedDocument(c)
			if err != nil {
				utils.ErrorResponse(c, err.Error(), 400)
				return
			}
			entry.SupportingDocument = storedName
			updateErr = gdb.Save(&entry).Error
			if updateErr == nil {
				c.JSON(200, gin.H{"message": "Document attached", "file": storedName, "entry_id": entry.ID})
				return
			}
		default:
			utils.ErrorResponse(c, "Entry kind must be monthly or quarterly", 400)
			return
		}

		utils.ErrorResponse(c, "Failed to attach document", 500)
	}
}

// UploadStepDocumentHandler godoc
// @Summary      Attach evidence to a stage step completion
// @Description  Uploads a file and links it to a stage 1 or stage 2 step completion. The stage path segment is "1" or "2".
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Param        stage          path      string  true  "1 or 2"
// @Param        completion_id  path      int     true  "Step completion ID"
// @Param        file           formData  file    true  "Document"
// @Success      200            {object}  object
// @Failure      400            {object}  utils.Response
// @Failure      404            {object}  utils.Response
// @Security     BearerAuth
// @Router       /api/stage_steps/{stage}/{completion_id}/document [post]
func UploadStepDocumentHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}

		completionID, err := strconv.ParseUint(c.Param("completion_id"), 10, 64)
		if err != nil {
			utils.ErrorResponse(c, "Invalid completion id", 400)
			return
		}

		switch c.Param("stage") {
		case "1":
			var completion models.Stage1StepCompletion
			if err := gdb.First(&completion, uint(completionID)).Error; err != nil {
				utils.ErrorResponse(c, "Step completion not found", 404)
				return
			}
			storedName, err := saveUploadedDocument(c)
			if err != nil {
				utils.ErrorResponse(c, err.Error(), 400)
				return
			}
			completion.SupportingDocument = storedName
			if err := gdb.Save(&completion).Error; err != nil {
				utils.ErrorResponse(c, "Failed to attach document", 500)
				return
			}
			c.JSON(200, gin.H{"message": "Document attached", "file": storedName, "completion_id": completion.ID})
		case "2":
			var completion models.Stage2StepCompletion
			if err := gdb.First(&completion, uint(completionID)).Error; err != nil {
				utils.ErrorResponse(c, "Step completion not found", 404)
				return
			}
			storedName, err := saveUploadedDocument(c)
			if err != nil {
				utils.ErrorResponse(c, err.Error(), 400)
				return
			}
			completion.SupportingDocument = storedName
			if err := gdb.Save(&completion).Error; err != nil {
				utils.ErrorResponse(c, "Failed to attach document", 500)
				return
			}
			c.JSON(200, gin.H{"message": "Document attached", "file": storedName, "completion_id": completion.ID})
		default:
			utils.ErrorResponse(c, "Stage must be 1 or 2", 400)
		}
	}
}

// ServeDocumentHandler godoc
// @Summary      Download a supporting document
// @Tags         upload
// @Produce      application/octet-stream
// @Param        file  query     string  true  "Stored file name"
// @Success      200   {file}    file
// @Failure      400   {object}  utils.Response
// @Failure      404   {object}  utils.Response
// @Security     BearerAuth
// @Router       /api/documents [get]
func ServeDocumentHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}

		fileName := c.Query("file")
		if fileName == "" {
			utils.ErrorResponse(c, "file parameter is required", 400)
			return
		}

		// Reject anything that could escape the document directory
		clean := filepath.Clean(fileName)
		if clean != fileName || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			utils.ErrorResponse(c, "Invalid file path", 400)
			return
		}

		absDir, err := filepath.Abs(documentDir())
		if err != nil {
			utils.ErrorResponse(c, "Server error", 500)
			return
		}
		filePath := filepath.Join(absDir, clean)
		if !strings.HasPrefix(filePath, absDir+string(os.PathSeparator)) {
			utils.ErrorResponse(c, "Access denied", 403)
			return
		}

		info, err := os.Stat(filePath)
		if os.IsNotExist(err) || (err == nil && info.IsDir()) {
			utils.ErrorResponse(c, "File not found", 404)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", clean))
		c.Header("Content-Type", "application/octet-stream")
		http.ServeFile(c.Writer, c.Request, filePath)
	}
}
