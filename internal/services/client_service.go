package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/lendbook/lendbook-api/internal/repository"
	"gorm.io/gorm"
)

// ClientService manages borrowers
type ClientService struct {
	repos *repository.Repositories
	txm   repository.TxManager
	audit *AuditService
}

// NewClientService creates a new client service
func NewClientService(repos *repository.Repositories, txm repository.TxManager, audit *AuditService) *ClientService {
	return &ClientService{repos: repos, txm: txm, audit: audit}
}

// CreateClient adds a borrower to a group
func (s *ClientService) CreateClient(ctx context.Context, client *models.Client) error {
	if client.Name == "" {
		return fmt.Errorf("%w: client name is required", ErrInvalidArgument)
	}

	if _, err := s.repos.Group.FindByID(ctx, client.UserID, client.GroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("loading group: %w", err)
	}

	if err := s.repos.Client.Create(ctx, client); err != nil {
		return fmt.Errorf("creating client: %w", err)
	}
	s.audit.LogAction(client.UserID, "CREATE", "Client", client.ID, "client "+client.Name, "", "")
	return nil
}

// GetClient returns a client by ID
func (s *ClientService) GetClient(ctx context.Context, ownerID, id uint) (*models.Client, error) {
	client, err := s.repos.Client.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return client, nil
}

// ListClients returns a filtered, paginated page of clients
func (s *ClientService) ListClients(ctx context.Context, ownerID uint, query *repository.ListQuery) ([]models.Client, int64, error) {
	return s.repos.Client.List(ctx, ownerID, query)
}

// UpdateClient updates a client's name, phone and group
func (s *ClientService) UpdateClient(ctx context.Context, ownerID uint, client *models.Client) error {
	existing, err := s.GetClient(ctx, ownerID, client.ID)
	if err != nil {
		return err
	}

	if client.GroupID != existing.GroupID {
		if _, err := s.repos.Group.FindByID(ctx, ownerID, client.GroupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading group: %w", err)
		}
	}

	existing.Name = client.Name
	existing.Phone = client.Phone
	existing.GroupID = client.GroupID

	if err := s.repos.Client.Update(ctx, existing); err != nil {
		return fmt.Errorf("updating client: %w", err)
	}
	s.audit.LogAction(ownerID, "UPDATE", "Client", client.ID, "client "+client.Name, "", "")
	return nil
}

// DeleteClient removes a loanless client; clients with loans are refused
// unless force is set, which cascades loans with their children first.
func (s *ClientService) DeleteClient(ctx context.Context, ownerID, id uint, force bool) error {
	if _, err := s.GetClient(ctx, ownerID, id); err != nil {
		return err
	}

	count, err := s.repos.Client.CountLoans(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("counting loans: %w", err)
	}
	if count > 0 && !force {
		return fmt.Errorf("%w: client still has %d loans", ErrInvalidState, count)
	}

	err = s.txm.WithinTransaction(ctx, func(r *repository.Repositories) error {
		loans, err := r.Loan.FindByClient(ctx, ownerID, id)
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
		return r.Client.Delete(ctx, ownerID, id)
	})
	if err != nil {
		return err
	}

	s.audit.LogAction(ownerID, "DELETE", "Client", id, "client deleted", "", "")
	return nil
}
