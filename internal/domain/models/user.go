// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account statuses. A self-registered user stays inactive until signup
// completes after OTP verification; admins may toggle it afterwards.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// DefaultProfileImage is assigned to users that never supplied one.
const DefaultProfileImage = "https://i.pravatar.cc/300?img=65"

// User is a field worker account that submits forms.
//
// The document layout (camelCase, "password" holding the bcrypt hash) is
// shared with records written by earlier versions of the service.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name          string             `bson:"name,omitempty" json:"name"`
	NameCI        string             `bson:"nameCi,omitempty" json:"-"` // lowercase, diacritics-stripped
	Email         string             `bson:"email" json:"email"`
	PasswordHash  string             `bson:"password,omitempty" json:"-"`
	Status        string             `bson:"status" json:"status"`
	IsOtpVerified bool               `bson:"isOtpVerified" json:"isOtpVerified"`
	ProfileImage  string             `bson:"profileImage,omitempty" json:"profileImage,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasPassword reports whether signup has been completed for this account.
func (u User) HasPassword() bool { return u.PasswordHash != "" }

// Admin is the single administrator account.
type Admin struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	PasswordHash  string             `bson:"password" json:"-"`
	ProfileImage  string             `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	IsOtpVerified bool               `bson:"isOtpVerified" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
