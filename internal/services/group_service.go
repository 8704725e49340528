package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/lendbook/lendbook-api/internal/repository"
	"gorm.io/gorm"
)

// GroupService manages lending groups
type GroupService struct {
	repos *repository.Repositories
	txm   repository.TxManager
	audit *AuditService
}

// NewGroupService creates a new group service
func NewGroupService(repos *repository.Repositories, txm repository.TxManager, audit *AuditService) *GroupService {
	return &GroupService{repos: repos, txm: txm, audit: audit}
}

// CreateGroup creates a new group for the user
func (s *GroupService) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.Name == "" {
		return fmt.Errorf("%w: group name is required", ErrInvalidArgument)
	}
	if err := s.repos.Group.Create(ctx, group); err != nil {
		return fmt.Errorf("creating group: %w", err)
	}
	s.audit.LogAction(group.UserID, "CREATE", "Group", group.ID, "group "+group.Name, "", "")
	return nil
}

// GetGroup returns a group by ID
func (s *GroupService) GetGroup(ctx context.Context, ownerID, id uint) (*models.Group, error) {
	group, err := s.repos.Group.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return group, nil
}

// ListGroups returns all of the user's groups with their clients
func (s *GroupService) ListGroups(ctx context.Context, ownerID uint) ([]models.Group, error) {
	return s.repos.Group.FindAll(ctx, ownerID)
}

// UpdateGroup updates a group's name and date range
func (s *GroupService) UpdateGroup(ctx context.Context, ownerID uint, group *models.Group) error {
	existing, err := s.GetGroup(ctx, ownerID, group.ID)
	if err != nil {
		return err
	}
	existing.Name = group.Name
	existing.StartDate = group.StartDate
	existing.EndDate = group.EndDate

	if err := s.repos.Group.Update(ctx, existing); err != nil {
		return fmt.Errorf("updating group: %w", err)
	}
	s.audit.LogAction(ownerID, "UPDATE", "Group", group.ID, "group "+group.Name, "", "")
	return nil
}

// DeleteGroup removes a group. Groups that still hold clients are refused;
// ForceDeleteGroup cascades instead.
func (s *GroupService) DeleteGroup(ctx context.Context, ownerID, id uint) error {
	if _, err := s.GetGroup(ctx, ownerID, id); err != nil {
		return err
	}

	count, err := s.repos.Group.CountClients(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("counting clients: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: group still has %d clients", ErrInvalidState, count)
	}

	if err := s.repos.Group.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("deleting group: %w", err)
	}
	s.audit.LogAction(ownerID, "DELETE", "Group", id, "group deleted", "", "")
	return nil
}

// ForceDeleteGroup removes a group and everything under it: loans with their
// payments and interest entries, then clients, then the group, one
// transaction.
func (s *GroupService) ForceDeleteGroup(ctx context.Context, ownerID, id uint) error {
	err := s.txm.WithinTransaction(ctx, func(r *repository.Repositories) error {
		if _, err := r.Group.FindByID(ctx, ownerID, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		clients, err := r.Client.FindByGroup(ctx, ownerID, id)
		if err != nil {
			return fmt.Errorf("listing clients: %w", err)
		}

		for _, client := range clients {
			loans, err := r.Loan.FindByClient(ctx, ownerID, client.ID)
			if err != nil {
				return fmt.Errorf("listing loans: %w", err)
			}
			for _, loan := range loans {
				if err := r.Payment.DeleteByLoan(ctx, ownerID, loan.ID); err != nil {
					return fmt.Errorf("deleting payments: %w", err)
				}
				if err := r.Interest.DeleteByLoan(ctx, ownerID, loan.ID); err != nil {
					return fmt.Errorf("deleting interest entries: %w", err)
				}
				if err := r.Loan.Delete(ctx, ownerID, loan.ID); err != nil {
					return fmt.Errorf("deleting loan: %w", err)
				}
			}
			if err := r.Client.Delete(ctx, ownerID, client.ID); err != nil {
				return fmt.Errorf("deleting client: %w", err)
			}
		}

		return r.Group.Delete(ctx, ownerID, id)
	})
	if err != nil {
		return err
	}

	s.audit.LogAction(ownerID, "DELETE", "Group", id, "group force-deleted with clients and loans", "", "")
	return nil
}
