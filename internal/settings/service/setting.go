package service

import (
	"context"

	"tripdesk/internal/settings/repository"
	"tripdesk/pkg/config"
	apperrors "tripdesk/pkg/errors"
	"tripdesk/pkg/model"
	"tripdesk/pkg/storage"
)

// heroMediaSettings hold object-store URLs; replacing or clearing one triggers
// best-effort deletion of the previous object.
var heroMediaSettings = map[string]struct{}{
	model.SettingHeroVideoDesktop: {},
	model.SettingHeroVideoMobile:  {},
	model.SettingHeroImage:        {},
}

type SettingService interface {
	// Get returns all settings as a flat name->value map.
	Get(ctx context.Context) (map[string]string, error)
	// Save upserts each pair individually. Replacing a hero media URL deletes
	// the previous object from storage, best effort.
	Save(ctx context.Context, values map[string]string) error
	// ClearHeroMedia removes one hero media setting and its stored object.
	ClearHeroMedia(ctx context.Context, name string) error
}

type settingService struct {
	repo  repository.SettingRepository
	store storage.ObjectStore
	cfg   *config.Config
}

func NewSettingService(repo repository.SettingRepository, store storage.ObjectStore, cfg *config.Config) SettingService {
	return &settingService{
		repo:  repo,
		store: store,
		cfg:   cfg,
	}
}

func (s *settingService) Get(ctx context.Context) (map[string]string, error) {
	settings, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load settings", "error", err)
		return nil, apperrors.Internal("Failed to retrieve settings", err)
	}

	values := make(map[string]string, len(settings))
	for _, setting := range settings {
		values[setting.Name] = setting.Value
	}
	return values, nil
}

func (s *settingService) Save(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return apperrors.InvalidInput("no settings provided")
	}

	current, err := s.Get(ctx)
	if err != nil {
		return err
	}

	for name, value := range values {
		if name == "" {
			return apperrors.InvalidInput("setting name cannot be empty")
		}

		// A replaced hero media object is deleted from storage; the setting
		// write stays authoritative when cleanup fails.
		if _, isMedia := heroMediaSettings[name]; isMedia {
			if old := current[name]; old != "" && old != value {
				if err := s.store.Delete(ctx, old); err != nil {
					s.cfg.Log.Warn("Failed to delete replaced hero media", "setting", name, "error", err)
				}
			}
		}

		if err := s.repo.Upsert(ctx, name, value); err != nil {
			s.cfg.Log.Error("Failed to save setting", "setting", name, "error", err)
			return apperrors.Internal("Failed to save settings", err)
		}
	}

	s.cfg.Log.Info("Settings saved", "count", len(values))
	return nil
}

func (s *settingService) ClearHeroMedia(ctx context.Context, name string) error {
	if _, ok := heroMediaSettings[name]; !ok {
		return apperrors.InvalidInput("unknown hero media setting")
	}

	current, err := s.Get(ctx)
	if err != nil {
		return err
	}

	if url := current[name]; url != "" {
		if err := s.store.Delete(ctx, url); err != nil {
			s.cfg.Log.Warn("Failed to delete hero media object", "setting", name, "error", err)
		}
	}

	if err := s.repo.DeleteByName(ctx, name); err != nil {
		s.cfg.Log.Error("Failed to clear hero media setting", "setting", name, "error", err)
		return apperrors.Internal("Failed to clear hero media", err)
	}

	s.cfg.Log.Info("Hero media cleared", "setting", name)
	return nil
}
