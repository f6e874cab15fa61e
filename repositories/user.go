//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"chat-relay/errors"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const userKeyPrefix = "user:"

type IUserRepository interface {
	CreateUser(username, firstName, lastName, hashedPassword string) (User, error)
	GetUserByUsername(username string) (User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the stored account. Username is unique and case-sensitive.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"firstname"`
	LastName     string    `json:"lastname"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func userKey(username string) []byte {
	return []byte(userKeyPrefix + username)
}

// CreateUser persists a new account.
// The existence check and the write happen in the same transaction, so two
// concurrent signups for one username cannot both succeed.
func (u UserRepository) CreateUser(username, firstName, lastName, hashedPassword string) (User, error) {
	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := userKey(username)
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return errors.ErrUserAlreadyExists
		case !stdErrors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(key, data)
	})
	if stdErrors.Is(err, badger.ErrConflict) {
		return User{}, errors.ErrUserAlreadyExists
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// GetUserByUsername returns ErrUserNotFound when no account matches.
func (u UserRepository) GetUserByUsername(username string) (User, error) {
	var user User

	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if stdErrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, fmt.Errorf("%w: %s", errors.ErrUserNotFound, username)
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}
