package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"wellfield-backend/config"
	"wellfield-backend/models"
	"wellfield-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadDir is where content images land, served back under /media.
func UploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "uploads"
}

type contentView struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ContentType string    `json:"contentType"`
	Enabled     bool      `json:"enabled"`
	SortOrder   int       `json:"sortOrder"`
	ImageURL    string    `json:"imageUrl,omitempty"`
}

func toContentView(content models.Content) contentView {
	view := contentView{
		ID:          content.ID,
		Title:       content.Title,
		Description: content.Description,
		ContentType: content.ContentType,
		Enabled:     content.Enabled,
		SortOrder:   content.SortOrder,
	}
	if len(content.Media) > 0 {
		view.ImageURL = content.Media[0].URL()
	}
	return view
}

func enabledContentByType(contentType string) ([]contentView, error) {
	var items []models.Content
	err := config.DB.Preload("Media", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, created_at ASC")
	}).
		Where("content_type = ? AND enabled = ?", contentType, true).
		Order("sort_order ASC, created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	views := make([]contentView, 0, len(items))
	for _, item := range items {
		views = append(views, toContentView(item))
	}
	return views, nil
}

// Home returns the landing page payload: enabled banners and cards in
// display order.
func Home(c *gin.Context) {
	banners, err := enabledContentByType(models.ContentTypeBanner)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load page content")
		return
	}
	cards, err := enabledContentByType(models.ContentTypeCard)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load page content")
		return
	}

	c.JSON(http.StatusOK, gin.H{"banners": banners, "cards": cards})
}

// Page serves the static-copy pages (about, faq, privacy, terms).
func Page(c *gin.Context) {
	contentType := strings.ToUpper(c.Param("type"))
	if !models.IsValidContentType(contentType) {
		utils.RespondWithError(c, http.StatusNotFound, "Page not found")
		return
	}

	sections, err := enabledContentByType(contentType)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load page content")
		return
	}

	c.JSON(http.StatusOK, gin.H{"contentType": contentType, "sections": sections})
}

// ListContent is the manager view: every block of every type, disabled
// included.
func ListContent(c *gin.Context) {
	query := config.DB.Preload("Media", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, created_at ASC")
	}).Order("content_type ASC, sort_order ASC")

	if contentType := c.Query("type"); contentType != "" {
		contentType = strings.ToUpper(contentType)
		if !models.IsValidContentType(contentType) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid content type")
			return
		}
		query = query.Where("content_type = ?", contentType)
	}

	var items []models.Content
	if err := query.Find(&items).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve content")
		return
	}

	c.JSON(http.StatusOK, items)
}

// CreateContent accepts a multipart form so an image can ride along with the
// text fields.
func CreateContent(c *gin.Context) {
	contentType := strings.ToUpper(c.PostForm("contentType"))
	if !models.IsValidContentType(contentType) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid content type")
		return
	}

	description := c.PostForm("description")
	if strings.TrimSpace(description) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Description is required")
		return
	}

	sortOrder, _ := strconv.Atoi(c.DefaultPostForm("sortOrder", "0"))
	enabled := c.DefaultPostForm("enabled", "true") != "false"

	content := models.Content{
		Title:       c.PostForm("title"),
		Description: description,
		ContentType: contentType,
		Enabled:     enabled,
		SortOrder:   sortOrder,
	}
	if err := config.DB.Create(&content).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create content")
		return
	}

	if file, err := c.FormFile("image"); err == nil {
		if err := attachImage(c, &content, file.Filename); err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save image")
			return
		}
	}

	config.DB.Preload("Media").First(&content, "id = ?", content.ID)
	c.JSON(http.StatusCreated, content)
}

// UpdateContent edits a block; an uploaded image replaces the existing one.
func UpdateContent(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid content ID format")
		return
	}

	var content models.Content
	if err := config.DB.Preload("Media").First(&content, "id = ?", contentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Content not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if title, ok := c.GetPostForm("title"); ok {
		content.Title = title
	}
	if description, ok := c.GetPostForm("description"); ok {
		if strings.TrimSpace(description) == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Description is required")
			return
		}
		content.Description = description
	}
	if contentType, ok := c.GetPostForm("contentType"); ok {
		contentType = strings.ToUpper(contentType)
		if !models.IsValidContentType(contentType) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid content type")
			return
		}
		content.ContentType = contentType
	}
	if sortOrder, ok := c.GetPostForm("sortOrder"); ok {
		if n, err := strconv.Atoi(sortOrder); err == nil {
			content.SortOrder = n
		}
	}
	if enabled, ok := c.GetPostForm("enabled"); ok {
		content.Enabled = enabled != "false"
	}

	if err := config.DB.Save(&content).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update content")
		return
	}

	if file, err := c.FormFile("image"); err == nil {
		removeMedia(content.Media)
		if err := attachImage(c, &content, file.Filename); err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save image")
			return
		}
	}

	config.DB.Preload("Media").First(&content, "id = ?", content.ID)
	c.JSON(http.StatusOK, content)
}

func DeleteContent(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid content ID format")
		return
	}

	var content models.Content
	if err := config.DB.Preload("Media").First(&content, "id = ?", contentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Content not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	removeMedia(content.Media)
	if err := config.DB.Delete(&content).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete content")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Content deleted successfully"})
}

// attachImage stores the uploaded file under UPLOAD_DIR/<type>/ with a
// timestamped name and records a media row pointing at it.
func attachImage(c *gin.Context, content *models.Content, filename string) error {
	file, err := c.FormFile("image")
	if err != nil {
		return err
	}

	subdir := strings.ToLower(content.ContentType)
	relPath := filepath.Join(subdir,
		fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(filename)))
	fullPath := filepath.Join(UploadDir(), relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return err
	}
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		return err
	}

	media := models.ContentMedia{
		ContentID: content.ID,
		FilePath:  filepath.ToSlash(relPath),
	}
	return config.DB.Create(&media).Error
}

// removeMedia deletes media rows and their files. File removal failures are
// ignored; the rows are authoritative.
func removeMedia(media []models.ContentMedia) {
	for _, m := range media {
		os.Remove(filepath.Join(UploadDir(), filepath.FromSlash(m.FilePath)))
		config.DB.Delete(&models.ContentMedia{}, "id = ?", m.ID)
	}
}
