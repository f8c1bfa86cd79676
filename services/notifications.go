package services

import (
	"context"
	"strings"
	"time"

	"faberlic-mining/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const NotificationListLimit = 10

type NotificationService struct {
	DB  *gorm.DB
	Now Clock
}

func NewNotificationService(db *gorm.DB, clock Clock) *NotificationService {
	if clock == nil {
		clock = SystemClock
	}
	return &NotificationService{DB: db, Now: clock}
}

func (s *NotificationService) Create(ctx context.Context, title, message string) (*models.Notification, error) {
	title, message = strings.TrimSpace(title), strings.TrimSpace(message)
	if title == "" || message == "" {
		return nil, ErrInvalidInput.WithMessage("title and message are required")
	}
	n := &models.Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		IsGlobal:  true,
		CreatedAt: s.Now(),
	}
	if err := s.DB.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// List returns the latest global notifications, newest first.
func (s *NotificationService) List(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	err := s.DB.WithContext(ctx).
		Where("is_global = ?", true).
		Order("created_at DESC").
		Limit(NotificationListLimit).
		Find(&out).Error
	return out, err
}

// Since returns global notifications created at or after the cursor,
// oldest first. Callers drop the ones they already hold.
func (s *NotificationService) Since(ctx context.Context, cursor time.Time) ([]models.Notification, error) {
	var out []models.Notification
	err := s.DB.WithContext(ctx).
		Where("is_global = ? AND created_at >= ?", true, cursor).
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// NotificationFeed hands out each global notification created after it was
// opened exactly once, including ones sharing a timestamp with an earlier batch.
type NotificationFeed struct {
	svc    *NotificationService
	cursor time.Time
	// ids already delivered with CreatedAt == cursor
	seen map[string]struct{}
}

func (s *NotificationService) NewFeed() *NotificationFeed {
	return &NotificationFeed{svc: s, cursor: s.Now(), seen: make(map[string]struct{})}
}

func (f *NotificationFeed) Next(ctx context.Context) ([]models.Notification, error) {
	rows, err := f.svc.Since(ctx, f.cursor)
	if err != nil {
		return nil, err
	}

	fresh := make([]models.Notification, 0, len(rows))
	for _, n := range rows {
		if n.CreatedAt.Equal(f.cursor) {
			if _, ok := f.seen[n.ID]; ok {
				continue
			}
		} else if n.CreatedAt.After(f.cursor) {
			f.cursor = n.CreatedAt
			f.seen = make(map[string]struct{})
		}
		f.seen[n.ID] = struct{}{}
		fresh = append(fresh, n)
	}
	return fresh, nil
}
