package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// File is the metadata record of one uploaded file and its access grants.
type File struct {
	BaseModel
	OwnerID       uuid.UUID   `json:"ownerID" gorm:"type:uuid;not null;index"`
	OriginalName  string      `json:"originalName" gorm:"type:varchar(255);not null"`
	StoredName    string      `json:"storedName" gorm:"type:varchar(255);not null;uniqueIndex"`
	StoragePath   string      `json:"-" gorm:"type:text;not null"`
	Size          int64       `json:"size" gorm:"not null;default:0"`
	MimeType      string      `json:"mimeType" gorm:"type:varchar(255);not null"`
	LinkToken     *string     `json:"linkToken,omitempty" gorm:"type:varchar(128);index"`
	LinkExpiresAt *time.Time  `json:"linkExpiresAt,omitempty"`
	UploadedAt    time.Time   `json:"uploadedAt" gorm:"not null"`
	Owner         *User       `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
	Shares        []FileShare `json:"-" gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE"`
	SharedWith    []uuid.UUID `json:"sharedWith" gorm:"-"`
}

// FileShare grants one user read access to one file. The composite primary
// key keeps a file's share list free of duplicates.
type FileShare struct {
	FileID    uuid.UUID `json:"fileID" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"userID" gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `json:"createdAt"`
}

func (FileShare) TableName() string {
	return "file_shares"
}

// HasLink reports whether a link token is attached, regardless of expiry.
func (f *File) HasLink() bool {
	return f.LinkToken != nil && f.LinkExpiresAt != nil
}

func (f *File) IsSharedWith(userID uuid.UUID) bool {
	return slices.Contains(f.SharedWith, userID)
}

// SetLink attaches a link token; token and expiry are always written together.
func (f *File) SetLink(token string, expiresAt time.Time) {
	f.LinkToken = &token
	f.LinkExpiresAt = &expiresAt
}

func (f *File) ClearLink() {
	f.LinkToken = nil
	f.LinkExpiresAt = nil
}

// ForViewer returns a copy suitable for serializing to viewerID: link details
// are only visible to the owner.
func (f File) ForViewer(viewerID uuid.UUID) File {
	if f.OwnerID != viewerID {
		f.LinkToken = nil
		f.LinkExpiresAt = nil
	}
	return f
}
