package services

import (
	"encoding/json"
	"errors"

	"wellness/config"
	"wellness/models"
	"wellness/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func RegisterAccount(email, password string) (*models.Account, error) {
	var existing models.Account
	err := config.DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, errors.New("email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := models.Account{Email: email, Password: string(hash)}
	if err := config.DB.Create(&account).Error; err != nil {
		return nil, err
	}

	// Mirror the account markers the engine reads locally.
	store := NewGormDeviceStore(config.DB, account.ID)
	if raw, err := json.Marshal(account.CreatedAt); err == nil {
		_ = store.Set(models.KeyAccountCreatedAt, raw)
	}
	if raw, err := json.Marshal(account.Premium); err == nil {
		_ = store.Set(models.KeyPremiumFlag, raw)
	}

	return &account, nil
}

func Authenticate(email, password string) (*models.Account, string, error) {
	var account models.Account
	if err := config.DB.Where("email = ?", email).First(&account).Error; err != nil {
		return nil, "", errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return nil, "", errors.New("invalid credentials")
	}

	token, err := utils.GenerateJWT(account.ID, account.Email)
	if err != nil {
		return nil, "", err
	}
	return &account, token, nil
}
