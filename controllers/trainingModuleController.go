package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Defendu/initializers"
	"github.com/Defendu/models"
	"github.com/Defendu/services"
	"github.com/doug-martin/goqu/v9"
)

// CreateTrainingModule creates a new module in draft state.
// POST /modules
func CreateTrainingModule(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var req models.TrainingModuleCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	module := models.TrainingModule{
		Trainer_ID:       currentUser.User_Profile_ID,
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		Difficulty:       req.Difficulty,
		Duration_Minutes: req.Duration_Minutes,
		Video_URL:        req.Video_URL,
		Status:           models.ModuleStatusDraft,
	}

	insert := initializers.DB.Insert("training_module").
		Rows(module).
		Returning("training_module_id")

	var moduleID int
	if _, err := insert.Executor().ScanVal(&moduleID); err != nil {
		log.Printf("Failed to create training module: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create module"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "Module created as draft.",
		"trainingModuleId": moduleID,
	})
}

// GetMyTrainingModules lists the current trainer's modules, any status.
// GET /modules/mine
func GetMyTrainingModules(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var modules []models.TrainingModule
	err := initializers.DB.From("training_module").
		Select("*").
		Where(goqu.C("trainer_id").Eq(currentUser.User_Profile_ID)).
		Order(goqu.C("datetime_update").Desc()).
		ScanStructs(&modules)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch modules", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"modules": modules})
}

// GetPublishedModules lists published modules, optionally by category.
// GET /modules
func GetPublishedModules(c *gin.Context) {
	query := initializers.DB.From("training_module").
		Select("*").
		Where(goqu.C("status").Eq(models.ModuleStatusPublished)).
		Order(goqu.C("datetime_update").Desc())

	if category := c.Query("category"); category != "" {
		query = query.Where(goqu.C("category").Eq(category))
	}

	var modules []models.TrainingModule
	if err := query.ScanStructs(&modules); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch modules", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"modules": modules})
}

// UpdateTrainingModule edits an own module while it is draft or rejected.
// PATCH /modules/:training_module_id
func UpdateTrainingModule(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	moduleID, err := strconv.Atoi(c.Param("training_module_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid module ID", "details": err.Error()})
		return
	}

	var req models.TrainingModuleUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	module, status := loadOwnModule(c, moduleID, currentUser)
	if status != http.StatusOK {
		return
	}

	if module.Status != models.ModuleStatusDraft && module.Status != models.ModuleStatusRejected {
		c.JSON(http.StatusConflict, gin.H{"error": "Only draft or rejected modules can be edited"})
		return
	}

	record := goqu.Record{"datetime_update": time.Now()}
	if req.Title != nil {
		record["title"] = *req.Title
	}
	if req.Description != nil {
		record["description"] = *req.Description
	}
	if req.Category != nil {
		record["category"] = *req.Category
	}
	if req.Difficulty != nil {
		record["difficulty"] = *req.Difficulty
	}
	if req.Duration_Minutes != nil {
		record["duration_minutes"] = *req.Duration_Minutes
	}
	if req.Video_URL != nil {
		record["video_url"] = *req.Video_URL
	}

	update := initializers.DB.Update("training_module").
		Set(record).
		Where(goqu.C("training_module_id").Eq(moduleID)).
		Executor()

	if _, err := update.Exec(); err != nil {
		log.Printf("Failed to update training module %d: %v", moduleID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update module"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Module updated."})
}

// SubmitTrainingModule moves a draft or rejected module into review.
// POST /modules/:training_module_id/submit
func SubmitTrainingModule(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	moduleID, err := strconv.Atoi(c.Param("training_module_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid module ID", "details": err.Error()})
		return
	}

	module, status := loadOwnModule(c, moduleID, currentUser)
	if status != http.StatusOK {
		return
	}

	if module.Status != models.ModuleStatusDraft && module.Status != models.ModuleStatusRejected {
		c.JSON(http.StatusConflict, gin.H{"error": "Only draft or rejected modules can be submitted for review"})
		return
	}

	update := initializers.DB.Update("training_module").
		Set(goqu.Record{
			"status":          models.ModuleStatusPendingReview,
			"review_feedback": nil,
			"datetime_update": time.Now(),
		}).
		Where(goqu.C("training_module_id").Eq(moduleID)).
		Executor()

	if _, err := update.Exec(); err != nil {
		log.Printf("Failed to submit training module %d: %v", moduleID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit module"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Module submitted for review."})
}

// GetModulesForReview lists modules for the admin review queue.
// GET /admin/modules?status=pending_review
func GetModulesForReview(c *gin.Context) {
	query := initializers.DB.From("training_module").
		Select("*").
		Order(goqu.C("datetime_update").Asc())

	status := c.DefaultQuery("status", models.ModuleStatusPendingReview)
	query = query.Where(goqu.C("status").Eq(status))

	var modules []models.TrainingModule
	if err := query.ScanStructs(&modules); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch modules", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"modules": modules})
}

// ReviewTrainingModule publishes or rejects a module under review.
// PATCH /admin/modules/:training_module_id/review
func ReviewTrainingModule(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	moduleID, err := strconv.Atoi(c.Param("training_module_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid module ID", "details": err.Error()})
		return
	}

	var req models.TrainingModuleReviewDecision
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var module models.TrainingModule
	found, err := initializers.DB.From("training_module").
		Select("*").
		Where(goqu.C("training_module_id").Eq(moduleID)).
		ScanStruct(&module)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch module", "details": err.Error()})
		return
	}

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Training module not found"})
		return
	}

	if module.Status != models.ModuleStatusPendingReview {
		c.JSON(http.StatusConflict, gin.H{"error": "This module is not awaiting review"})
		return
	}

	newStatus := models.ModuleStatusRejected
	if req.Action == "publish" {
		newStatus = models.ModuleStatusPublished
	}

	update := initializers.DB.Update("training_module").
		Set(goqu.Record{
			"status":          newStatus,
			"review_feedback": req.Feedback,
			"reviewed_by":     currentUser.User_Profile_ID,
			"datetime_update": time.Now(),
		}).
		Where(goqu.And(
			goqu.C("training_module_id").Eq(moduleID),
			goqu.C("status").Eq(models.ModuleStatusPendingReview),
		)).
		Executor()

	if _, err := update.Exec(); err != nil {
		log.Printf("Failed to review training module %d: %v", moduleID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review module"})
		return
	}

	// Review email is best effort
	var trainer models.UserProfile
	trainerFound, err := initializers.DB.From("user_profile").
		Select("*").
		Where(goqu.C("user_profile_id").Eq(module.Trainer_ID)).
		ScanStruct(&trainer)
	if err == nil && trainerFound {
		if emailService := services.GetEmailService(); emailService != nil {
			if err := emailService.SendModuleReviewEmail(
				trainer.Email, trainer.First_Name, module.Title,
				newStatus == models.ModuleStatusPublished, req.Feedback,
			); err != nil {
				log.Printf("Failed to send module review email: %v", err)
			}
		}
	}

	log.Printf("Training module %d %s by user %d", moduleID, newStatus, currentUser.User_Profile_ID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Module " + newStatus + ".",
		"status":  newStatus,
	})
}

// loadOwnModule fetches a module and enforces ownership. On failure it
// writes the response and returns a non-200 status.
func loadOwnModule(c *gin.Context, moduleID int, currentUser models.UserProfile) (*models.TrainingModule, int) {
	var module models.TrainingModule
	found, err := initializers.DB.From("training_module").
		Select("*").
		Where(goqu.C("training_module_id").Eq(moduleID)).
		ScanStruct(&module)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch module", "details": err.Error()})
		return nil, http.StatusInternalServerError
	}

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Training module not found"})
		return nil, http.StatusNotFound
	}

	if module.Trainer_ID != currentUser.User_Profile_ID && currentUser.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only manage your own modules"})
		return nil, http.StatusForbidden
	}

	return &module, http.StatusOK
}
