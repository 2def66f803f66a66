package database

import (
	"context"
	"errors"
	"fmt"

	"go-print-erp/internal/logger"
	"go-print-erp/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedState struct {
	Name   string
	Code   string
	Cities []string
}

type seedCountry struct {
	Country models.Country
	States  []seedState
}

var geography = []seedCountry{
	{
		Country: models.Country{Name: "India", ISO2: "IN", PhoneCode: "+91"},
		States: []seedState{
			{Name: "Maharashtra", Code: "MH", Cities: []string{"Mumbai", "Pune", "Nagpur"}},
			{Name: "Karnataka", Code: "KA", Cities: []string{"Bengaluru", "Mysuru"}},
			{Name: "Tamil Nadu", Code: "TN", Cities: []string{"Chennai", "Coimbatore"}},
			{Name: "Delhi", Code: "DL", Cities: []string{"New Delhi"}},
			{Name: "Gujarat", Code: "GJ", Cities: []string{"Ahmedabad", "Surat"}},
		},
	},
	{
		Country: models.Country{Name: "Nepal", ISO2: "NP", PhoneCode: "+977"},
		States: []seedState{
			{Name: "Bagmati", Code: "P3", Cities: []string{"Kathmandu", "Lalitpur"}},
		},
	},
}

// SeedGeography inserts the reference countries, states and cities that
// are not present yet. Running it twice is harmless.
func SeedGeography(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, sc := range geography {
			country := sc.Country
			if err := tx.Where(models.Country{ISO2: country.ISO2}).FirstOrCreate(&country).Error; err != nil {
				return fmt.Errorf("seed country %s: %w", country.ISO2, err)
			}
			for _, ss := range sc.States {
				state := models.State{CountryID: country.ID, Name: ss.Name, Code: ss.Code}
				if err := tx.Where(models.State{CountryID: country.ID, Name: ss.Name}).FirstOrCreate(&state).Error; err != nil {
					return fmt.Errorf("seed state %s: %w", ss.Name, err)
				}
				for _, name := range ss.Cities {
					city := models.City{StateID: state.ID, Name: name}
					if err := tx.Where(city).FirstOrCreate(&city).Error; err != nil {
						return fmt.Errorf("seed city %s: %w", name, err)
					}
				}
			}
		}
		return nil
	})
}

// EnsureAdmin creates the bootstrap admin account when no user with that
// username exists.
func EnsureAdmin(ctx context.Context, db *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		return errors.New("admin username and password are required")
	}
	var existing models.User
	err := db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	admin := models.User{
		Username:     username,
		Name:         "Administrator",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}
	log := logger.WithComponent("database")
	log.Info().Str("username", username).Msg("Bootstrap admin created")
	return nil
}
