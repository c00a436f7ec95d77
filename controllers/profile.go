package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quotecraft-backend/config"
	"quotecraft-backend/models"
	"quotecraft-backend/utils"

	"github.com/gin-gonic/gin"
)

const maxLogoBytes = 2 << 20

type UpdateProfileInput struct {
	Name          *string  `json:"name"`
	BusinessName  *string  `json:"businessName"`
	ABN           *string  `json:"abn"`
	LicenceNumber *string  `json:"licenceNumber"`
	Phone         *string  `json:"phone"`
	BusinessEmail *string  `json:"businessEmail" binding:"omitempty,email"`
	Address       *string  `json:"address"`
	PaymentTerms  *string  `json:"paymentTerms"`
	BankDetails   *string  `json:"bankDetails"`
	TradeType     *string  `json:"tradeType"`
	TaxRate       *float64 `json:"taxRate" binding:"omitempty,gte=0,lt=1"`
}

func GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile edits the business profile. Existing quotes keep the snapshot
// taken when they were created; only new quotes pick up these values.
func UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.BusinessName != nil {
		user.BusinessName = *input.BusinessName
	}
	if input.ABN != nil {
		user.ABN = *input.ABN
	}
	if input.LicenceNumber != nil {
		user.LicenceNumber = *input.LicenceNumber
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.BusinessEmail != nil {
		user.BusinessEmail = *input.BusinessEmail
	}
	if input.Address != nil {
		user.Address = *input.Address
	}
	if input.PaymentTerms != nil {
		user.PaymentTerms = *input.PaymentTerms
	}
	if input.BankDetails != nil {
		user.BankDetails = *input.BankDetails
	}
	if input.TradeType != nil {
		user.TradeType = *input.TradeType
	}
	if input.TaxRate != nil {
		user.TaxRate = *input.TaxRate
	}

	if err := config.DB.Save(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, user)
}

// UploadLogo stores a business logo image and records its serving path.
func UploadLogo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	fh, err := c.FormFile("logo")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "No logo file provided")
		return
	}
	if fh.Size > maxLogoBytes {
		utils.RespondWithError(c, http.StatusBadRequest, "Logo exceeds the 2MB limit")
		return
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		utils.RespondWithError(c, http.StatusBadRequest, "Logo must be an image")
		return
	}

	dir, err := utils.LogoDir()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to prepare logo directory")
		return
	}

	filename := fmt.Sprintf("%s-%d%s", user.ID, time.Now().Unix(), filepath.Ext(fh.Filename))
	if err := c.SaveUploadedFile(fh, filepath.Join(dir, filename)); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to store logo")
		return
	}

	// Replace any previous logo file.
	if user.Logo != "" {
		os.Remove(filepath.Join(dir, filepath.Base(user.Logo)))
	}

	user.Logo = "/api/profile/logo/" + filename
	if err := config.DB.Save(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"logo": user.Logo})
}

func ServeLogo(c *gin.Context) {
	filename := filepath.Base(c.Param("filename"))
	dir, err := utils.LogoDir()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to open logo directory")
		return
	}

	path := filepath.Join(dir, filename)
	if _, err := os.Stat(path); err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Logo not found")
		return
	}

	c.File(path)
}
