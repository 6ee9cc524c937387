package models

import "time"

// Training module review pipeline:
// draft -> pending_review -> published | rejected
// rejected -> pending_review (resubmit after edits)
const (
	ModuleStatusDraft         = "draft"
	ModuleStatusPendingReview = "pending_review"
	ModuleStatusPublished     = "published"
	ModuleStatusRejected      = "rejected"
)

type TrainingModule struct {
	Training_Module_ID int       `json:"trainingModuleId" db:"training_module_id" goqu:"skipinsert"`
	Trainer_ID         int       `json:"trainerId" db:"trainer_id"`
	Title              string    `json:"title" db:"title"`
	Description        string    `json:"description" db:"description"`
	Category           string    `json:"category" db:"category"`
	Difficulty         string    `json:"difficulty" db:"difficulty"`
	Duration_Minutes   int       `json:"durationMinutes" db:"duration_minutes"`
	Video_URL          *string   `json:"videoUrl" db:"video_url"`
	Status             string    `json:"status" db:"status"`
	Review_Feedback    *string   `json:"reviewFeedback" db:"review_feedback"`
	Reviewed_By        *int      `json:"reviewedBy" db:"reviewed_by"`
	Datetime_Create    time.Time `json:"datetimeCreate" db:"datetime_create" goqu:"skipinsert"`
	Datetime_Update    time.Time `json:"datetimeUpdate" db:"datetime_update" goqu:"skipinsert"`
}

type TrainingModuleCreate struct {
	Title            string  `json:"title" binding:"required"`
	Description      string  `json:"description" binding:"required"`
	Category         string  `json:"category" binding:"required"`
	Difficulty       string  `json:"difficulty" binding:"required,oneof=beginner intermediate advanced"`
	Duration_Minutes int     `json:"durationMinutes" binding:"required,min=1"`
	Video_URL        *string `json:"videoUrl"`
}

type TrainingModuleUpdate struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Category         *string `json:"category"`
	Difficulty       *string `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	Duration_Minutes *int    `json:"durationMinutes" binding:"omitempty,min=1"`
	Video_URL        *string `json:"videoUrl"`
}

type TrainingModuleReviewDecision struct {
	Action   string `json:"action" binding:"required,oneof=publish reject"`
	Feedback string `json:"feedback"`
}
