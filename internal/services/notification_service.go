package services

import (
	"context"

	"github.com/prestia/prestia-api/internal/models"
	"github.com/prestia/prestia-api/internal/repository"
)

type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) FindByCustomer(ctx context.Context, customerID uint, limit int) ([]models.Notification, error) {
	return s.repo.FindByCustomer(ctx, customerID, limit)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, customerID uint) error {
	return s.repo.MarkAllAsRead(ctx, customerID)
}

func (s *NotificationService) NotifyCustomer(ctx context.Context, customerID uint, title, message, notifType string) error {
	notification := &models.Notification{
		CustomerID:       customerID,
		Title:            title,
		Message:          message,
		NotificationType: &notifType,
	}
	return s.repo.Create(ctx, notification)
}
