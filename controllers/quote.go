package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"quotecraft-backend/config"
	"quotecraft-backend/models"
	"quotecraft-backend/pdf"
	"quotecraft-backend/services"
	"quotecraft-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuoteItemInput struct {
	Description string   `json:"description" binding:"required"`
	Quantity    float64  `json:"quantity" binding:"gte=0"`
	Unit        string   `json:"unit"`
	UnitPrice   float64  `json:"unitPrice" binding:"gte=0"`
	Total       *float64 `json:"total"`
	Category    string   `json:"category" binding:"omitempty,oneof=labour materials"`
}

type TempFileInput struct {
	TempFilename string `json:"tempFilename" binding:"required"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
}

type CreateQuoteInput struct {
	ClientName     string           `json:"clientName" binding:"required"`
	ClientEmail    string           `json:"clientEmail" binding:"omitempty,email"`
	ClientPhone    string           `json:"clientPhone"`
	ClientAddress  string           `json:"clientAddress"`
	TradeType      string           `json:"tradeType"`
	JobDescription string           `json:"jobDescription"`
	Items          []QuoteItemInput `json:"items"`
	Notes          string           `json:"notes"`
	ValidityDays   int              `json:"validityDays" binding:"omitempty,gte=1,lte=365"`
	Template       string           `json:"template"`
	TempFiles      []TempFileInput  `json:"tempFiles"`
}

type UpdateQuoteInput struct {
	ClientName     *string           `json:"clientName"`
	ClientEmail    *string           `json:"clientEmail" binding:"omitempty,email"`
	ClientPhone    *string           `json:"clientPhone"`
	ClientAddress  *string           `json:"clientAddress"`
	TradeType      *string           `json:"tradeType"`
	JobDescription *string           `json:"jobDescription"`
	Status         *string           `json:"status" binding:"omitempty,oneof=draft sent viewed accepted declined"`
	Items          *[]QuoteItemInput `json:"items"`
	Notes          *string           `json:"notes"`
	ValidityDays   *int              `json:"validityDays" binding:"omitempty,gte=1,lte=365"`
	Template       *string           `json:"template"`
}

// GenerateQuote runs the AI pipeline over a description and uploaded files and
// returns a priced draft. Nothing is persisted; the client saves the draft via
// CreateQuote, referencing the staged uploads by temp filename.
func GenerateQuote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	description := c.PostForm("description")

	var staged []services.StagedFile
	var stagedNames []string
	if form, err := c.MultipartForm(); err == nil && form != nil {
		fileHeaders := form.File["files"]
		if len(fileHeaders) > services.MaxUploadFiles {
			utils.RespondWithError(c, http.StatusBadRequest,
				fmt.Sprintf("Too many files (max %d)", services.MaxUploadFiles))
			return
		}

		tempDir, err := utils.TempDir()
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to prepare upload directory")
			return
		}

		for _, fh := range fileHeaders {
			if fh.Size > services.MaxUploadBytes {
				utils.RemoveTempFiles(stagedNames)
				utils.RespondWithError(c, http.StatusBadRequest,
					fmt.Sprintf("File %s exceeds the 10MB limit", fh.Filename))
				return
			}

			name := uuid.New().String() + filepath.Ext(fh.Filename)
			dst := filepath.Join(tempDir, name)
			if err := c.SaveUploadedFile(fh, dst); err != nil {
				utils.RemoveTempFiles(stagedNames)
				utils.RespondWithError(c, http.StatusInternalServerError, "Failed to store uploaded file")
				return
			}

			staged = append(staged, services.StagedFile{
				Path:         dst,
				Filename:     name,
				OriginalName: fh.Filename,
				MimeType:     fh.Header.Get("Content-Type"),
				Size:         fh.Size,
			})
			stagedNames = append(stagedNames, name)
		}
	}

	engine := services.NewGenerationEngine()
	draft, err := engine.Generate(c.Request.Context(), services.GenerateInput{
		Description: description,
		Files:       staged,
		TaxRate:     user.TaxRate,
	})
	if err != nil {
		utils.RemoveTempFiles(stagedNames)
		if errors.Is(err, services.ErrNoInput) {
			utils.RespondWithError(c, http.StatusBadRequest, "Provide a description or at least one file")
			return
		}
		var genErr *services.GenerationError
		if errors.As(err, &genErr) {
			log.Printf("Quote generation failed: %v", err)
			utils.RespondWithError(c, http.StatusBadGateway, "AI service error, please try again")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate quote")
		return
	}

	uploadedFiles := make([]gin.H, 0, len(draft.Files))
	for _, f := range draft.Files {
		uploadedFiles = append(uploadedFiles, gin.H{
			"tempFilename": f.Filename,
			"originalName": f.OriginalName,
			"mimeType":     f.MimeType,
			"size":         f.Size,
			"isImage":      f.IsImage(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"title":          draft.Title,
		"jobDescription": draft.Description,
		"items":          draft.Items,
		"notes":          draft.Notes,
		"subtotal":       draft.Subtotal,
		"tax":            draft.Tax,
		"total":          draft.Total,
		"truncated":      draft.Truncated,
		"uploadedFiles":  uploadedFiles,
	})
}

// CreateQuote persists a quote as a draft, freezing the business profile into
// it and promoting any staged uploads into the quote's directory.
func CreateQuote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	items, lineTotals := buildQuoteItems(input.Items)
	subtotal, tax, total := utils.QuoteTotals(lineTotals, user.TaxRate)

	quote := models.Quote{
		UserID:           userID,
		ClientName:       input.ClientName,
		ClientEmail:      input.ClientEmail,
		ClientPhone:      input.ClientPhone,
		ClientAddress:    input.ClientAddress,
		TradeType:        input.TradeType,
		JobDescription:   input.JobDescription,
		Status:           models.StatusDraft,
		Subtotal:         subtotal,
		Tax:              tax,
		Total:            total,
		ValidityDays:     input.ValidityDays,
		Notes:            input.Notes,
		Template:         input.Template,
		BusinessSnapshot: user.Snapshot(),
		Items:            items,
	}
	if quote.ValidityDays == 0 {
		quote.ValidityDays = 30
	}
	if quote.Template == "" {
		quote.Template = models.DefaultTemplate
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&quote).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create quote")
		return
	}

	for _, tf := range input.TempFiles {
		name := filepath.Base(tf.TempFilename)
		if err := utils.PromoteTempFile(name, quote.ID.String()); err != nil {
			// Staged file expired or was never written; skip it.
			log.Printf("Skipping missing temp file %s: %v", name, err)
			continue
		}
		attachment := models.QuoteAttachment{
			QuoteID:      quote.ID,
			Filename:     name,
			OriginalName: tf.OriginalName,
			MimeType:     tf.MimeType,
			Size:         tf.Size,
		}
		if err := tx.Create(&attachment).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save attachment")
			return
		}
	}

	if err := recordEvent(tx, quote.ID, models.EventCreated, nil); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record quote event")
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Transaction failed")
		return
	}

	loadQuoteResponse(c, http.StatusCreated, userID, quote.ID)
}

// GetQuotes lists the account's quotes, newest first. Supports ?status=.
func GetQuotes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	query := config.DB.Where("user_id = ?", userID).Order("created_at desc").Preload("Items", sortedItems)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var quotes []models.Quote
	if err := query.Find(&quotes).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch quotes")
		return
	}

	c.JSON(http.StatusOK, quotes)
}

// GetQuote fetches one quote with its items, attachments and event history.
func GetQuote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var quote models.Quote
	if err := quoteByID(userID, c.Param("id")).
		Preload("Items", sortedItems).
		Preload("Attachments").
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("created_at desc") }).
		First(&quote).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		return
	}

	c.JSON(http.StatusOK, quote)
}

// UpdateQuote applies a partial update. Replacing the items reprices the quote
// using the tax rate frozen in its business snapshot.
func UpdateQuote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input UpdateQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var quote models.Quote
	if err := quoteByID(userID, c.Param("id")).First(&quote).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		return
	}

	if input.ClientName != nil {
		quote.ClientName = *input.ClientName
	}
	if input.ClientEmail != nil {
		quote.ClientEmail = *input.ClientEmail
	}
	if input.ClientPhone != nil {
		quote.ClientPhone = *input.ClientPhone
	}
	if input.ClientAddress != nil {
		quote.ClientAddress = *input.ClientAddress
	}
	if input.TradeType != nil {
		quote.TradeType = *input.TradeType
	}
	if input.JobDescription != nil {
		quote.JobDescription = *input.JobDescription
	}
	if input.Notes != nil {
		quote.Notes = *input.Notes
	}
	if input.ValidityDays != nil {
		quote.ValidityDays = *input.ValidityDays
	}
	if input.Template != nil {
		quote.Template = *input.Template
	}

	statusChanged := input.Status != nil && *input.Status != quote.Status
	if statusChanged {
		applyStatus(&quote, *input.Status, time.Now())
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if input.Items != nil {
		if err := tx.Where("quote_id = ?", quote.ID).Delete(&models.QuoteItem{}).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update items")
			return
		}

		items, lineTotals := buildQuoteItems(*input.Items)
		for i := range items {
			items[i].QuoteID = quote.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				tx.Rollback()
				utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update items")
				return
			}
		}

		taxRate := quote.BusinessSnapshot.TaxRate
		if taxRate == 0 {
			taxRate = models.DefaultTaxRate
		}
		quote.Subtotal, quote.Tax, quote.Total = utils.QuoteTotals(lineTotals, taxRate)
	}

	if err := tx.Omit("Items", "Attachments", "Events").Save(&quote).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update quote")
		return
	}

	if statusChanged {
		if err := recordEvent(tx, quote.ID, quote.Status, nil); err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record quote event")
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Transaction failed")
		return
	}

	loadQuoteResponse(c, http.StatusOK, userID, quote.ID)
}

// DeleteQuote removes a quote, its rows and its attachment files.
func DeleteQuote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var quote models.Quote
	if err := quoteByID(userID, c.Param("id")).First(&quote).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("quote_id = ?", quote.ID).Delete(&models.QuoteItem{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete quote")
		return
	}
	if err := tx.Where("quote_id = ?", quote.ID).Delete(&models.QuoteAttachment{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete quote")
		return
	}
	if err := tx.Where("quote_id = ?", quote.ID).Delete(&models.QuoteEvent{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete quote")
		return
	}
	if err := tx.Delete(&quote).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete quote")
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Transaction failed")
		return
	}

	if err := utils.RemoveQuoteDir(quote.ID.String()); err != nil {
		log.Printf("Failed to remove upload directory for quote %s: %v", quote.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quote deleted successfully"})
}

// SendQuote marks a quote as sent and returns the public link for the client.
func SendQuote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var quote models.Quote
	if err := quoteByID(userID, c.Param("id")).First(&quote).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		return
	}

	now := time.Now()
	quote.Status = models.StatusSent
	quote.SentAt = &now

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Omit("Items", "Attachments", "Events").Save(&quote).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to send quote")
		return
	}
	if err := recordEvent(tx, quote.ID, models.EventSent, models.JSONB{"to": quote.ClientEmail}); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record quote event")
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Transaction failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Quote marked as sent",
		"publicUrl": fmt.Sprintf("/q/%s", quote.ID),
	})
}

// ViewQuote is the public endpoint behind the client-facing quote link. The
// first view flips a sent quote to viewed and stamps the timestamp.
func ViewQuote(c *gin.Context) {
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	var quote models.Quote
	if err := config.DB.Where("id = ?", quoteID).
		Preload("Items", sortedItems).
		Preload("Attachments").
		First(&quote).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		return
	}

	now := time.Now()
	if quote.ViewedAt == nil {
		quote.ViewedAt = &now
		if quote.Status == models.StatusSent {
			quote.Status = models.StatusViewed
		}
		if err := config.DB.Omit("Items", "Attachments", "Events").Save(&quote).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record view")
			return
		}
		if err := recordEvent(config.DB, quote.ID, models.EventViewed, nil); err != nil {
			log.Printf("Failed to record view event for quote %s: %v", quote.ID, err)
		}
	}

	daysRemaining := quote.ValidityDays - utils.DaysBetween(quote.CreatedAt, now)
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"quote":         quote,
		"expired":       quote.Expired(now),
		"daysRemaining": daysRemaining,
	})
}

// AcceptQuote is the public endpoint where the client accepts or declines.
func AcceptQuote(c *gin.Context) {
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	var input struct {
		Action string `json:"action" binding:"omitempty,oneof=accept decline"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if input.Action == "" {
		input.Action = "accept"
	}

	var quote models.Quote
	if err := config.DB.Where("id = ?", quoteID).First(&quote).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		return
	}

	if quote.Status == models.StatusAccepted || quote.Status == models.StatusDeclined {
		utils.RespondWithError(c, http.StatusConflict, "Quote has already been responded to")
		return
	}
	if quote.Expired(time.Now()) {
		utils.RespondWithError(c, http.StatusGone, "Quote has expired")
		return
	}

	now := time.Now()
	eventType := models.EventAccepted
	if input.Action == "decline" {
		quote.Status = models.StatusDeclined
		quote.DeclinedAt = &now
		eventType = models.EventDeclined
	} else {
		quote.Status = models.StatusAccepted
		quote.AcceptedAt = &now
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Omit("Items", "Attachments", "Events").Save(&quote).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update quote")
		return
	}
	if err := recordEvent(tx, quote.ID, eventType, nil); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record quote event")
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Transaction failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": quote.Status})
}

// QuotePDF renders the quote document and streams it as a download. The
// template can be overridden per request with ?template=.
func QuotePDF(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var quote models.Quote
	if err := quoteByID(userID, c.Param("id")).
		Preload("Items", sortedItems).
		Preload("Attachments").
		First(&quote).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		return
	}

	templateID := quote.Template
	if override := c.Query("template"); override != "" {
		templateID = override
	}

	data, filename, err := pdf.Render(&quote, templateID, utils.UploadsRoot())
	if err != nil {
		log.Printf("PDF render failed for quote %s: %v", quote.ID, err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to render quote document")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// ServeQuoteUpload streams a stored attachment, scoped to the owning account.
func ServeQuoteUpload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	quoteID := c.Param("quoteId")
	var quote models.Quote
	if err := quoteByID(userID, quoteID).First(&quote).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		return
	}

	filename := filepath.Base(c.Param("filename"))
	path := filepath.Join(utils.UploadsRoot(), quote.ID.String(), filename)
	if _, err := os.Stat(path); err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "File not found")
		return
	}

	c.File(path)
}

func quoteByID(userID uuid.UUID, rawID string) *gorm.DB {
	quoteID, err := uuid.Parse(rawID)
	if err != nil {
		// Force a not-found on malformed ids.
		quoteID = uuid.Nil
	}
	return config.DB.Where("id = ? AND user_id = ?", quoteID, userID)
}

func sortedItems(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order asc")
}

func buildQuoteItems(inputs []QuoteItemInput) ([]models.QuoteItem, []float64) {
	items := make([]models.QuoteItem, 0, len(inputs))
	lineTotals := make([]float64, 0, len(inputs))
	for i, in := range inputs {
		item := models.QuoteItem{
			Description: in.Description,
			Quantity:    in.Quantity,
			Unit:        in.Unit,
			UnitPrice:   in.UnitPrice,
			Category:    in.Category,
			SortOrder:   i,
		}
		if !models.ValidUnit(item.Unit) {
			item.Unit = "each"
		}
		if item.Category == "" {
			item.Category = models.CategoryLabour
		}
		if in.Total != nil {
			item.Total = utils.Round2(*in.Total)
		} else {
			item.Total = utils.LineTotal(item.Quantity, item.UnitPrice)
		}
		lineTotals = append(lineTotals, item.Total)
		items = append(items, item)
	}
	return items, lineTotals
}

func applyStatus(quote *models.Quote, status string, now time.Time) {
	quote.Status = status
	switch status {
	case models.StatusSent:
		quote.SentAt = &now
	case models.StatusViewed:
		quote.ViewedAt = &now
	case models.StatusAccepted:
		quote.AcceptedAt = &now
	case models.StatusDeclined:
		quote.DeclinedAt = &now
	}
}

func recordEvent(tx *gorm.DB, quoteID uuid.UUID, eventType string, metadata models.JSONB) error {
	if metadata == nil {
		metadata = models.JSONB{}
	}
	event := models.QuoteEvent{QuoteID: quoteID, EventType: eventType, Metadata: metadata}
	return tx.Create(&event).Error
}

func loadQuoteResponse(c *gin.Context, code int, userID, quoteID uuid.UUID) {
	var quote models.Quote
	if err := quoteByID(userID, quoteID.String()).
		Preload("Items", sortedItems).
		Preload("Attachments").
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("created_at desc") }).
		First(&quote).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load quote")
		return
	}
	c.JSON(code, quote)
}
