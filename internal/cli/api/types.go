package api

import "time"

// File mirrors the server's file record.
type File struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"ownerID"`
	OriginalName  string     `json:"originalName"`
	StoredName    string     `json:"storedName"`
	Size          int64      `json:"size"`
	MimeType      string     `json:"mimeType"`
	SharedWith    []string   `json:"sharedWith"`
	LinkToken     *string    `json:"linkToken,omitempty"`
	LinkExpiresAt *time.Time `json:"linkExpiresAt,omitempty"`
	UploadedAt    time.Time  `json:"uploadedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is returned by register and login.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type UserResponse struct {
	User User `json:"user"`
}

type FileResponse struct {
	File File `json:"file"`
}

type FilesResponse struct {
	Files []File `json:"files"`
}

type Link struct {
	LinkToken string    `json:"linkToken"`
	ExpiresAt time.Time `json:"expiresAt"`
	ShareURL  string    `json:"shareUrl"`
}

type RawURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
