package services

import (
	"crypto/subtle"
	"time"

	"github.com/fileshare/fileshare/internal/models"
	"github.com/google/uuid"
)

// AccessEvaluator is the single place that decides who may read or change a file.
type AccessEvaluator struct {
	now func() time.Time
}

func NewAccessEvaluator() *AccessEvaluator {
	return &AccessEvaluator{now: time.Now}
}

// WithClock returns an evaluator that reads the current time from now.
func (a *AccessEvaluator) WithClock(now func() time.Time) *AccessEvaluator {
	return &AccessEvaluator{now: now}
}

func (a *AccessEvaluator) Now() time.Time {
	return a.now()
}

// CanRead grants access to the owner, to users on the share list, and to
// holders of the file's link token while the link has not yet expired.
func (a *AccessEvaluator) CanRead(file *models.File, requesterID uuid.UUID, linkToken string) bool {
	if file == nil {
		return false
	}
	return a.isOwner(file, requesterID) || a.isShared(file, requesterID) || a.linkValid(file, linkToken)
}

// CanMutate is true only for the owner.
func (a *AccessEvaluator) CanMutate(file *models.File, requesterID uuid.UUID) bool {
	return file != nil && a.isOwner(file, requesterID)
}

func (a *AccessEvaluator) isOwner(file *models.File, requesterID uuid.UUID) bool {
	return requesterID != uuid.Nil && file.OwnerID == requesterID
}

func (a *AccessEvaluator) isShared(file *models.File, requesterID uuid.UUID) bool {
	return requesterID != uuid.Nil && file.IsSharedWith(requesterID)
}

// Expiry is strict: at linkExpiresAt the link no longer opens the file.
func (a *AccessEvaluator) linkValid(file *models.File, token string) bool {
	if token == "" || !file.HasLink() {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(*file.LinkToken)) != 1 {
		return false
	}
	return file.LinkExpiresAt.After(a.now())
}
