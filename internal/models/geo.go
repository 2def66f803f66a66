package models

// Reference geography used for address pickers.

type Country struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:100;not null" json:"name"`
	ISO2      string `gorm:"size:2;not null;uniqueIndex" json:"iso2"`
	PhoneCode string `gorm:"size:8" json:"phoneCode"`
}

type State struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CountryID uint   `gorm:"not null;index" json:"countryId"`
	Name      string `gorm:"size:100;not null" json:"name"`
	Code      string `gorm:"size:10" json:"code"`
}

type City struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	StateID uint   `gorm:"not null;index" json:"stateId"`
	Name    string `gorm:"size:100;not null" json:"name"`
}
