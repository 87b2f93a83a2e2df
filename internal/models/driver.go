package models

import (
	"fmt"
	"time"
)

// Driver application statuses. A record is created as pending and may move
// to approved or rejected exactly once, by an administrator.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Driver matches the document in the drivers collection.
type Driver struct {
	ID           string    `bson:"driverID" json:"id"`
	UserID       string    `bson:"userID" json:"user_id"`
	FullName     string    `bson:"fullName" json:"full_name"`
	CPF          string    `bson:"cpf" json:"cpf"` // digits only, 11 of them
	CompanyName  string    `bson:"companyName" json:"company_name"`
	CompanyID    string    `bson:"companyID" json:"company_id"`
	Phone        string    `bson:"phone" json:"phone"` // digits only
	Email        string    `bson:"email" json:"email"`
	LicensePlate string    `bson:"licensePlate,omitempty" json:"license_plate,omitempty"`
	Status       string    `bson:"status" json:"status"`
	CreatedAt    time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updated_at"`
}

// DriverWithPhotos is the review-view shape: a driver joined with its photos.
type DriverWithPhotos struct {
	Driver `bson:",inline"`
	Photos []DriverPhoto `json:"photos"`
}

// FormatCPF renders an 11-digit CPF with the usual punctuation
// (000.000.000-00). Anything else is returned as-is.
func FormatCPF(cpf string) string {
	if len(cpf) != 11 {
		return cpf
	}
	return fmt.Sprintf("%s.%s.%s-%s", cpf[0:3], cpf[3:6], cpf[6:9], cpf[9:11])
}
