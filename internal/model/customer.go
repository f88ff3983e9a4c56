package model

import "time"

type CustomerStatus string

const (
	CustomerStatusLead      CustomerStatus = "LEAD"
	CustomerStatusContact   CustomerStatus = "CONTACT"
	CustomerStatusQualified CustomerStatus = "QUALIFIED"
	CustomerStatusCustomer  CustomerStatus = "CUSTOMER"
	CustomerStatusInactive  CustomerStatus = "INACTIVE"
)

func (s CustomerStatus) Valid() bool {
	switch s {
	case CustomerStatusLead, CustomerStatusContact, CustomerStatusQualified, CustomerStatusCustomer, CustomerStatusInactive:
		return true
	}
	return false
}

const (
	SourceChat   = "chat"
	SourceSheets = "sheets"
	SourceManual = "manual"
)

func ValidSource(source string) bool {
	switch source {
	case SourceChat, SourceSheets, SourceManual:
		return true
	}
	return false
}

// Customer is a CRM contact. Email is unique; Phone is unique when present,
// which is why it is nullable.
type Customer struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Email     string         `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Phone     *string        `gorm:"column:phone;uniqueIndex" json:"phone"`
	Company   string         `gorm:"column:company" json:"company,omitempty"`
	Status    CustomerStatus `gorm:"column:status;type:varchar(16);not null;default:'LEAD';index" json:"status"`
	Source    string         `gorm:"column:source;type:varchar(32);not null;default:'manual';index" json:"source"`
	Notes     string         `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at;not null;index" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null" json:"updatedAt"`
}

func (Customer) TableName() string { return CustomersTable }

func (c Customer) PhoneValue() string {
	if c.Phone == nil {
		return ""
	}
	return *c.Phone
}
