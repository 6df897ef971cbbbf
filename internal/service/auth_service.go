package service

import (
	"context"
	"errors"
	"strings"

	"requisition/internal/domain"
	"requisition/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

// Session результат входа; объявление есть только если оно активно
type Session struct {
	User         domain.User          `json:"user"`
	Announcement *domain.Announcement `json:"announcement,omitempty"`
}

// AuthService статический список сотрудников и одно имя администратора
type AuthService struct {
	roster        map[string]string
	adminName     string
	announcements repository.AnnouncementRepository
}

func NewAuthService(roster []string, adminName string, announcements repository.AnnouncementRepository) *AuthService {
	m := make(map[string]string, len(roster)+1)
	for _, name := range roster {
		name = strings.TrimSpace(name)
		if name != "" {
			m[strings.ToLower(name)] = name
		}
	}
	adminName = strings.TrimSpace(adminName)
	if adminName != "" {
		m[strings.ToLower(adminName)] = adminName
	}
	return &AuthService{roster: m, adminName: adminName, announcements: announcements}
}

// Resolve находит пользователя по имени без учёта регистра
func (s *AuthService) Resolve(name string) (domain.User, error) {
	canonical, ok := s.roster[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	role := domain.RoleDesigner
	if strings.EqualFold(canonical, s.adminName) {
		role = domain.RoleAdmin
	}
	return domain.User{
		ID:   strings.Join(strings.Fields(strings.ToLower(canonical)), "_"),
		Name: canonical,
		Role: role,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, name string) (*Session, error) {
	u, err := s.Resolve(name)
	if err != nil {
		logger.Warn().Str("name", name).Msg("login rejected")
		return nil, err
	}
	sess := &Session{User: u}
	a, err := s.announcements.GetAnnouncement(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if a != nil && a.IsActive {
		sess.Announcement = a
	}
	logger.Info().Str("user_id", u.ID).Str("role", string(u.Role)).Msg("login")
	return sess, nil
}

// AnnouncementService глобальное объявление
type AnnouncementService struct {
	repo repository.AnnouncementRepository
}

func NewAnnouncementService(repo repository.AnnouncementRepository) *AnnouncementService {
	return &AnnouncementService{repo: repo}
}

func (s *AnnouncementService) Get(ctx context.Context) (*domain.Announcement, error) {
	return s.repo.GetAnnouncement(ctx)
}

func (s *AnnouncementService) Save(ctx context.Context, a domain.Announcement) error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrInvalidInput
	}
	if err := s.repo.SaveAnnouncement(ctx, a); err != nil {
		return err
	}
	logger.Info().Bool("active", a.IsActive).Msg("announcement saved")
	return nil
}
