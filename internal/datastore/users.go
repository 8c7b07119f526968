// users.go: user accessors
package datastore

import (
	"github.com/phibia/phibia-go/internal/errors"
	"gorm.io/gorm"
)

// GetUserByID retrieves a user by primary key.
func (ds *DataStore) GetUserByID(id uint) (User, error) {
	var user User
	if err := ds.DB.First(&user, id).Error; err != nil {
		return User{}, userLookupError(err, "id", id)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address.
func (ds *DataStore) GetUserByEmail(email string) (User, error) {
	var user User
	if err := ds.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return User{}, userLookupError(err, "email", email)
	}
	return user, nil
}

// GetUserByName retrieves a user by display name.
func (ds *DataStore) GetUserByName(name string) (User, error) {
	var user User
	if err := ds.DB.Where("name = ?", name).First(&user).Error; err != nil {
		return User{}, userLookupError(err, "name", name)
	}
	return user, nil
}

// CreateUser inserts a new user row.
func (ds *DataStore) CreateUser(user *User) error {
	if err := ds.DB.Create(user).Error; err != nil {
		return errors.New(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Context("operation", "create_user").
			Build()
	}
	return nil
}

// UpdateUser persists profile changes on an existing user row.
func (ds *DataStore) UpdateUser(user *User) error {
	if err := ds.DB.Save(user).Error; err != nil {
		return errors.New(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Context("operation", "update_user").
			Context("user_id", user.ID).
			Build()
	}
	return nil
}

func userLookupError(err error, key string, value any) error {
	category := errors.CategoryDatabase
	if errors.Is(err, gorm.ErrRecordNotFound) {
		category = errors.CategoryNotFound
	}
	return errors.New(err).
		Category(category).
		Component("datastore").
		Context("entity", "user").
		Context(key, value).
		Build()
}
