package models

import "time"

const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

type TrainerApplication struct {
	Trainer_Application_ID int       `json:"trainerApplicationId" db:"trainer_application_id" goqu:"skipinsert"`
	User_Profile_ID        int       `json:"userProfileId" db:"user_profile_id"`
	Specialties            string    `json:"specialties" db:"specialties"`
	Experience_Years       int       `json:"experienceYears" db:"experience_years"`
	Certifications         string    `json:"certifications" db:"certifications"`
	Motivation             string    `json:"motivation" db:"motivation"`
	Status                 string    `json:"status" db:"status"`
	Review_Notes           *string   `json:"reviewNotes" db:"review_notes"`
	Reviewed_By            *int      `json:"reviewedBy" db:"reviewed_by"`
	Datetime_Create        time.Time `json:"datetimeCreate" db:"datetime_create" goqu:"skipinsert"`
	Datetime_Update        time.Time `json:"datetimeUpdate" db:"datetime_update" goqu:"skipinsert"`
}

type TrainerApplicationCreate struct {
	Specialties      string `json:"specialties" binding:"required"`
	Experience_Years int    `json:"experienceYears" binding:"min=0"`
	Certifications   string `json:"certifications"`
	Motivation       string `json:"motivation" binding:"required"`
}

type TrainerApplicationReview struct {
	Action       string `json:"action" binding:"required,oneof=approve reject"`
	Review_Notes string `json:"reviewNotes"`
}
