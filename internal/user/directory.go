// Package user resolves device owners to notification recipients.
package user

import (
	"context"

	userrepo "ddaas-companion/monitor/internal/user/repository"
)

// Directory looks up owner email addresses for alert routing.
type Directory struct {
	repo userrepo.Repository
}

// NewDirectory returns a Directory backed by repo.
func NewDirectory(repo userrepo.Repository) *Directory {
	return &Directory{repo: repo}
}

// EmailByID returns the owner's email, or "" when the owner is unknown or has
// no email on record. Returns an error only for lookup failures.
func (d *Directory) EmailByID(ctx context.Context, ownerID string) (string, error) {
	if d.repo == nil {
		return "", nil
	}
	u, err := d.repo.GetByID(ctx, ownerID)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", nil
	}
	return u.Email, nil
}
