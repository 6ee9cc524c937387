package services

import (
	"github.com/Defendu/models"
	"github.com/doug-martin/goqu/v9"
)

// TokenStore is the password reset token record store, namespaced by the
// opaque token string.
type TokenStore interface {
	Get(token string) (*models.PasswordResetToken, bool, error)
	Put(record models.PasswordResetToken) error
	// MarkUsed flips the used flag, guarded by used = false. It reports
	// whether this call won the flip, so concurrent consumers cannot both
	// claim the same token.
	MarkUsed(token string) (bool, error)
	Delete(token string) error
}

type postgresTokenStore struct {
	db *goqu.Database
}

func NewTokenStore(db *goqu.Database) TokenStore {
	return &postgresTokenStore{db: db}
}

func (s *postgresTokenStore) Get(token string) (*models.PasswordResetToken, bool, error) {
	var record models.PasswordResetToken
	found, err := s.db.From("password_reset_tokens").
		Select("*").
		Where(goqu.C("token").Eq(token)).
		ScanStruct(&record)
	if err != nil || !found {
		return nil, false, err
	}
	return &record, true, nil
}

func (s *postgresTokenStore) Put(record models.PasswordResetToken) error {
	insert := s.db.Insert("password_reset_tokens").Rows(record).Executor()
	_, err := insert.Exec()
	return err
}

func (s *postgresTokenStore) MarkUsed(token string) (bool, error) {
	update := s.db.Update("password_reset_tokens").
		Set(goqu.Record{"used": true}).
		Where(goqu.And(
			goqu.C("token").Eq(token),
			goqu.C("used").Eq(false),
		)).
		Executor()

	result, err := update.Exec()
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *postgresTokenStore) Delete(token string) error {
	del := s.db.Delete("password_reset_tokens").
		Where(goqu.C("token").Eq(token)).
		Executor()
	_, err := del.Exec()
	return err
}
