package services

import (
	"context"
	"strconv"
	"time"

	"github.com/Defendu/initializers"
	"github.com/Defendu/models"
	"github.com/doug-martin/goqu/v9"
	"golang.org/x/crypto/bcrypt"
)

type databaseIdentityService struct{}

// NewDatabaseIdentityService returns the fallback identity service backed by
// the local user_profile table. Used when no Firebase credentials are
// configured.
func NewDatabaseIdentityService() IdentityService {
	return &databaseIdentityService{}
}

func (s *databaseIdentityService) FindAccountByEmail(_ context.Context, email string) (*Account, error) {
	var user models.UserProfile
	found, err := initializers.DB.From("user_profile").
		Select("*").
		Where(goqu.And(
			goqu.C("email").Eq(email),
			goqu.C("deleted").Eq(false),
		)).
		ScanStruct(&user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrAccountNotFound
	}
	return &Account{ID: strconv.Itoa(user.User_Profile_ID), Email: user.Email}, nil
}

func (s *databaseIdentityService) SetAccountPassword(_ context.Context, accountID string, newPassword string) error {
	userID, err := strconv.Atoi(accountID)
	if err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	update := initializers.DB.Update("user_profile").
		Set(goqu.Record{
			"password":        string(passwordHash),
			"updated_by":      userID,
			"datetime_update": time.Now(),
		}).
		Where(goqu.C("user_profile_id").Eq(userID)).
		Executor()

	_, err = update.Exec()
	return err
}
