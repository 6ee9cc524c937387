package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

type firebaseIdentityService struct {
	client *auth.Client
}

// NewFirebaseIdentityService builds the Firebase Auth backed identity
// service from the FIREBASE_SERVICE_ACCOUNT_BASE64 credential blob, with an
// optional FIREBASE_DATABASE_URL override. Malformed credentials are a
// startup error, not a first-use error.
func NewFirebaseIdentityService(ctx context.Context) (IdentityService, error) {
	encoded := os.Getenv("FIREBASE_SERVICE_ACCOUNT_BASE64")
	if encoded == "" {
		return nil, fmt.Errorf("FIREBASE_SERVICE_ACCOUNT_BASE64 is not set")
	}

	credentials, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Firebase service account: %v", err)
	}

	var config *firebase.Config
	if databaseURL := os.Getenv("FIREBASE_DATABASE_URL"); databaseURL != "" {
		config = &firebase.Config{DatabaseURL: databaseURL}
	}

	app, err := firebase.NewApp(ctx, config, option.WithCredentialsJSON(credentials))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %v", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firebase auth client: %v", err)
	}

	log.Println("Identity service initialized with Firebase Auth")
	return &firebaseIdentityService{client: client}, nil
}

func (s *firebaseIdentityService) FindAccountByEmail(ctx context.Context, email string) (*Account, error) {
	user, err := s.client.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &Account{ID: user.UID, Email: user.Email}, nil
}

func (s *firebaseIdentityService) SetAccountPassword(ctx context.Context, accountID string, newPassword string) error {
	update := (&auth.UserToUpdate{}).Password(newPassword)
	if _, err := s.client.UpdateUser(ctx, accountID, update); err != nil {
		return fmt.Errorf("failed to update password: %v", err)
	}
	return nil
}
