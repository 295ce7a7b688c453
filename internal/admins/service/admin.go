package service

import (
	"context"
	"errors"

	adminerrors "tripdesk/internal/admins/errors"
	"tripdesk/internal/admins/repository"
	"tripdesk/pkg/config"
	apperrors "tripdesk/pkg/errors"
	"tripdesk/pkg/model"
	"tripdesk/pkg/sanitizer"
)

// AdminService manages the allow-list and doubles as the authorization gate
// for the auth middleware.
type AdminService interface {
	List(ctx context.Context) ([]*model.Admin, error)
	Add(ctx context.Context, email string) (*model.Admin, error)
	// BulkAdd inserts each email independently and reports per-item results;
	// duplicates and invalid entries do not abort the batch.
	BulkAdd(ctx context.Context, emails []string) ([]model.BulkAddResult, error)
	Remove(ctx context.Context, id string) error

	IsAdmin(ctx context.Context, email string) (bool, error)
}

type adminService struct {
	repo repository.AdminRepository
	cfg  *config.Config
}

func NewAdminService(repo repository.AdminRepository, cfg *config.Config) AdminService {
	return &adminService{repo: repo, cfg: cfg}
}

func (s *adminService) List(ctx context.Context) ([]*model.Admin, error) {
	admins, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list admins", "error", err)
		return nil, apperrors.Internal("Failed to retrieve admins", err)
	}
	return admins, nil
}

func (s *adminService) Add(ctx context.Context, email string) (*model.Admin, error) {
	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}

	admin := &model.Admin{Email: email}
	if err := s.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, adminerrors.ErrDuplicate) {
			return nil, apperrors.Conflict("Admin already exists")
		}
		s.cfg.Log.Error("Failed to add admin", "email", email, "error", err)
		return nil, apperrors.Internal("Failed to add admin", err)
	}

	s.cfg.Log.Info("Admin added", "email", email)
	return admin, nil
}

func (s *adminService) BulkAdd(ctx context.Context, emails []string) ([]model.BulkAddResult, error) {
	results := make([]model.BulkAddResult, 0, len(emails))
	for _, raw := range emails {
		email := sanitizer.NormalizeEmail(raw)
		if email == "" {
			results = append(results, model.BulkAddResult{Email: raw, Added: false, Reason: "empty email"})
			continue
		}

		err := s.repo.Create(ctx, &model.Admin{Email: email})
		switch {
		case err == nil:
			results = append(results, model.BulkAddResult{Email: email, Added: true})
		case errors.Is(err, adminerrors.ErrDuplicate):
			results = append(results, model.BulkAddResult{Email: email, Added: false, Reason: "already exists"})
		default:
			s.cfg.Log.Error("Failed to add admin in bulk", "email", email, "error", err)
			results = append(results, model.BulkAddResult{Email: email, Added: false, Reason: "internal error"})
		}
	}

	s.cfg.Log.Info("Bulk admin add finished", "requested", len(emails))
	return results, nil
}

func (s *adminService) Remove(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Admin ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, adminerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Admin", id)
		}
		if errors.Is(err, adminerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid admin ID format")
		}
		s.cfg.Log.Error("Failed to remove admin", "id", id, "error", err)
		return apperrors.Internal("Failed to remove admin", err)
	}

	s.cfg.Log.Info("Admin removed", "id", id)
	return nil
}

// IsAdmin backs the auth middleware; a lookup failure propagates so the
// middleware can fail closed.
func (s *adminService) IsAdmin(ctx context.Context, email string) (bool, error) {
	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}
	return s.repo.ExistsByEmail(ctx, email)
}
