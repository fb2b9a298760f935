package service

import (
	"context"
	"fmt"

	"folio/internal/auth"
	"folio/internal/models"
	"folio/internal/repository"
)

// ResourceKind names the resource families ownership checks understand.
type ResourceKind string

const (
	ResourcePortfolio ResourceKind = "portfolio"
	ResourceProject   ResourceKind = "project"
	ResourceMedia     ResourceKind = "media"
)

// Access is the kind of operation being authorized.
type Access int

const (
	// AccessRead covers operations that only observe a resource.
	AccessRead Access = iota
	// AccessWrite covers create, update, delete and share issuance.
	AccessWrite
)

// OwnershipResolver answers "who owns this resource" and enforces the
// access rules built on top of that answer. Ownership of a project or a
// media item is always the owner of the portfolio it hangs off; the
// resolver never trusts a caller-supplied owner id.
type OwnershipResolver struct {
	repo repository.OwnershipRepository
}

func NewOwnershipResolver(repo repository.OwnershipRepository) *OwnershipResolver {
	return &OwnershipResolver{repo: repo}
}

// ResolveOwner returns the owning user id for the resource, or a not-found
// error when the resource does not exist or has no owner to derive.
func (r *OwnershipResolver) ResolveOwner(ctx context.Context, kind ResourceKind, id uint) (uint, error) {
	own, err := r.resolve(ctx, kind, id)
	if err != nil {
		return 0, err
	}
	return own.OwnerID, nil
}

// Authorize checks whether the caller may perform the given access on the
// resource. caller is nil for anonymous requests.
//
// A missing resource is reported as not found for every caller, owner or
// not, so the error does not reveal whether the id was ever valid. Public
// visibility only ever substitutes for ownership on reads; writes require
// the owner no matter how visible the resource is.
func (r *OwnershipResolver) Authorize(ctx context.Context, caller *auth.Identity, kind ResourceKind, id uint, access Access) error {
	own, err := r.resolve(ctx, kind, id)
	if err != nil {
		return err
	}
	if caller != nil && caller.UserID == own.OwnerID {
		return nil
	}
	if access == AccessRead && own.Public {
		return nil
	}
	return models.NewForbiddenError("You do not have access to this resource")
}

func (r *OwnershipResolver) resolve(ctx context.Context, kind ResourceKind, id uint) (*repository.Ownership, error) {
	switch kind {
	case ResourcePortfolio:
		return r.repo.PortfolioOwnership(ctx, id)
	case ResourceProject:
		return r.repo.ProjectOwnership(ctx, id)
	case ResourceMedia:
		return r.repo.MediaOwnership(ctx, id)
	default:
		return nil, models.NewInternalError(fmt.Errorf("unknown resource kind %q", kind))
	}
}
