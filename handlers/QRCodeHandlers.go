package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/http"
	"strconv"

	"portal/models"
	"portal/utils"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
	"gorm.io/gorm"
)

func drawText(img *image.RGBA, x, y int, label string, bold bool) {
	col := color.RGBA{0, 0, 0, 255}
	face := inconsolata.Regular8x16
	if bold {
		col = color.RGBA{30, 30, 30, 255}
		face = inconsolata.Bold8x16
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(x * 64),
			Y: fixed.Int26_6(y * 64),
		},
	}
	d.DrawString(label)
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

// GenerateWorkQRCodeHandler renders a site card for one work: its QR code
// above the address, project and output details. Councils print these for
// on-site identification of works under construction.
// @Summary Generate work QR code card
// @Tags QR
// @Param id path int true "Work ID"
// @Success 200 {file} binary "JPEG image"
// @Failure 404 {object} utils.Response
// @Router /api/works/{id}/qr [get]
func GenerateWorkQRCodeHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}
		workID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			utils.ErrorResponse(c, "Invalid work id", http.StatusBadRequest)
			return
		}

		var work models.Work
		err = gdb.
			Preload("Address").
			Preload("Address.Project").
			Preload("Address.Project.Council").
			Preload("OutputType").
			First(&work, uint(workID)).Error
		if err != nil {
			utils.ErrorResponse(c, "Work not found", http.StatusNotFound)
			return
		}

		qrData := struct {
			WorkID    uint   `json:"work_id"`
			ProjectID uint   `json:"project_id"`
			Address   string `json:"address"`
		}{
			WorkID:    work.ID,
			ProjectID: work.Address.ProjectID,
			Address:   work.Address.FullAddress(),
		}
		jsonData, err := json.Marshal(qrData)
		if err != nil {
			utils.ErrorResponse(c, "Failed to encode work data", http.StatusInternalServerError)
			return
		}

		qr, err := qrcode.New(string(jsonData), qrcode.Medium)
		if err != nil {
			utils.ErrorResponse(c, "QR code generation failed", http.StatusInternalServerError)
			return
		}
		qrImg := qr.Image(512)

		qrSize := qrImg.Bounds().Dy()
		padding := 30
		lineHeight := 28
		textAreaHeight := 5*lineHeight + padding
		totalHeight := qrSize + padding + textAreaHeight

		card := image.NewRGBA(image.Rect(0, 0, qrSize, totalHeight))
		draw.Draw(card, card.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
		draw.Draw(card, image.Rect(0, 0, qrSize, qrSize), qrImg, image.Point{}, draw.Src)

		separatorY := qrSize + padding/2
		for x := 0; x < qrSize; x++ {
			card.Set(x, separatorY, color.RGBA{200, 200, 200, 255})
		}

		outputType := "N/A"
		if work.OutputType != nil {
			outputType = work.OutputType.Name
		}

		startY := qrSize + padding + lineHeight
		xPos := 20
		drawText(card, xPos, startY, "Work ID:", true)
		drawText(card, xPos+120, startY, strconv.FormatUint(uint64(work.ID), 10), false)
		drawText(card, xPos, startY+lineHeight, "Project:", true)
		drawText(card, xPos+120, startY+lineHeight, truncate(work.Address.Project.Name, 30), false)
		drawText(card, xPos, startY+2*lineHeight, "Council:", true)
		drawText(card, xPos+120, startY+2*lineHeight, truncate(work.Address.Project.Council.Name, 30), false)
		drawText(card, xPos, startY+3*lineHeight, "Address:", true)
		drawText(card, xPos+120, startY+3*lineHeight, truncate(work.Address.FullAddress(), 40), false)
		drawText(card, xPos, startY+4*lineHeight, "Output:", true)
		drawText(card, xPos+120, startY+4*lineHeight, truncate(outputType, 30), false)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, card, nil); err != nil {
			utils.ErrorResponse(c, "JPEG encoding failed", http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
	}
}
