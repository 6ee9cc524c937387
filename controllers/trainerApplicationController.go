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

// SubmitTrainerApplication creates a pending trainer application for the
// current user. One open application per user.
// POST /trainer-applications
func SubmitTrainerApplication(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	if currentUser.Role != models.RoleUser {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only regular members can apply to become a trainer"})
		return
	}

	var req models.TrainerApplicationCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pendingCount, err := initializers.DB.From("trainer_application").
		Where(goqu.And(
			goqu.C("user_profile_id").Eq(currentUser.User_Profile_ID),
			goqu.C("status").Eq(models.ApplicationStatusPending),
		)).
		Count()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing applications", "details": err.Error()})
		return
	}

	if pendingCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "You already have a pending trainer application"})
		return
	}

	application := models.TrainerApplication{
		User_Profile_ID:  currentUser.User_Profile_ID,
		Specialties:      req.Specialties,
		Experience_Years: req.Experience_Years,
		Certifications:   req.Certifications,
		Motivation:       req.Motivation,
		Status:           models.ApplicationStatusPending,
	}

	insert := initializers.DB.Insert("trainer_application").Rows(application).Executor()
	if _, err := insert.Exec(); err != nil {
		log.Printf("Failed to create trainer application: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Trainer application submitted."})
}

// GetMyTrainerApplication returns the current user's latest application.
// GET /trainer-applications/me
func GetMyTrainerApplication(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var application models.TrainerApplication
	found, err := initializers.DB.From("trainer_application").
		Select("*").
		Where(goqu.C("user_profile_id").Eq(currentUser.User_Profile_ID)).
		Order(goqu.C("datetime_create").Desc()).
		ScanStruct(&application)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch application", "details": err.Error()})
		return
	}

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "No trainer application found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"application": application})
}

// GetTrainerApplications lists applications for the admin review queue.
// GET /trainer-applications?status=pending
func GetTrainerApplications(c *gin.Context) {
	query := initializers.DB.From("trainer_application").
		Select("*").
		Order(goqu.C("datetime_create").Asc())

	if status := c.Query("status"); status != "" {
		query = query.Where(goqu.C("status").Eq(status))
	}

	var applications []models.TrainerApplication
	if err := query.ScanStructs(&applications); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": applications})
}

// ReviewTrainerApplication approves or rejects a pending application.
// Approval promotes the applicant to the trainer role.
// PATCH /trainer-applications/:trainer_application_id
func ReviewTrainerApplication(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	applicationID, err := strconv.Atoi(c.Param("trainer_application_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID", "details": err.Error()})
		return
	}

	var req models.TrainerApplicationReview
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var application models.TrainerApplication
	found, err := initializers.DB.From("trainer_application").
		Select("*").
		Where(goqu.C("trainer_application_id").Eq(applicationID)).
		ScanStruct(&application)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch application", "details": err.Error()})
		return
	}

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trainer application not found"})
		return
	}

	if application.Status != models.ApplicationStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "This application has already been reviewed"})
		return
	}

	newStatus := models.ApplicationStatusRejected
	if req.Action == "approve" {
		newStatus = models.ApplicationStatusApproved
	}

	update := initializers.DB.Update("trainer_application").
		Set(goqu.Record{
			"status":          newStatus,
			"review_notes":    req.Review_Notes,
			"reviewed_by":     currentUser.User_Profile_ID,
			"datetime_update": time.Now(),
		}).
		Where(goqu.And(
			goqu.C("trainer_application_id").Eq(applicationID),
			goqu.C("status").Eq(models.ApplicationStatusPending),
		)).
		Executor()

	if _, err := update.Exec(); err != nil {
		log.Printf("Failed to update trainer application %d: %v", applicationID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review application"})
		return
	}

	if newStatus == models.ApplicationStatusApproved {
		promote := initializers.DB.Update("user_profile").
			Set(goqu.Record{
				"role":            models.RoleTrainer,
				"updated_by":      currentUser.User_Profile_ID,
				"datetime_update": time.Now(),
			}).
			Where(goqu.C("user_profile_id").Eq(application.User_Profile_ID)).
			Executor()

		if _, err := promote.Exec(); err != nil {
			log.Printf("Failed to promote user %d to trainer: %v", application.User_Profile_ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to promote applicant"})
			return
		}
	}

	// Decision email is best effort
	var applicant models.UserProfile
	applicantFound, err := initializers.DB.From("user_profile").
		Select("*").
		Where(goqu.C("user_profile_id").Eq(application.User_Profile_ID)).
		ScanStruct(&applicant)
	if err == nil && applicantFound {
		if emailService := services.GetEmailService(); emailService != nil {
			if err := emailService.SendTrainerApplicationDecisionEmail(
				applicant.Email, applicant.First_Name,
				newStatus == models.ApplicationStatusApproved, req.Review_Notes,
			); err != nil {
				log.Printf("Failed to send application decision email: %v", err)
			}
		}
	}

	log.Printf("Trainer application %d %s by user %d", applicationID, newStatus, currentUser.User_Profile_ID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Application " + newStatus + ".",
		"status":  newStatus,
	})
}
