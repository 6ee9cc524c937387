package models

import "time"

const (
	RoleUser    = "user"
	RoleTrainer = "trainer"
	RoleAdmin   = "admin"
)

type UserProfile struct {
	User_Profile_ID int       `json:"userProfileId" db:"user_profile_id" goqu:"skipinsert"`
	Username        string    `json:"username" db:"username"`
	Password        string    `json:"-" db:"password"`
	Email           string    `json:"email" db:"email"`
	First_Name      string    `json:"firstName" db:"first_name"`
	Last_Name       string    `json:"lastName" db:"last_name"`
	Role            string    `json:"role" db:"role"`
	Created_By      int       `json:"createdBy" db:"created_by"`
	Datetime_Create time.Time `json:"datetimeCreate" db:"datetime_create" goqu:"skipinsert"`
	Updated_By      int       `json:"updatedBy" db:"updated_by"`
	Datetime_Update time.Time `json:"datetimeUpdate" db:"datetime_update" goqu:"skipinsert"`
	Deleted         bool      `json:"deleted" db:"deleted" goqu:"skipinsert"`
}

type UserProfileSignup struct {
	Username   string `json:"username" binding:"required,min=3"`
	Password   string `json:"password" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	First_Name string `json:"firstName" binding:"required"`
	Last_Name  string `json:"lastName"`
}

type Login struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserProfileChangePassword struct {
	Old_Password string `json:"oldPassword" binding:"required"`
	New_Password string `json:"newPassword" binding:"required"`
}
