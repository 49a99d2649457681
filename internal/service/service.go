package service

import (
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"publishingCore/internal/config"
	"publishingCore/internal/repository"
)

type Service struct {
	Permission   PermissionChecker
	Article      ArticleService
	Revision     RevisionService
	Submission   SubmissionService
	Compliance   ComplianceChecker
	Notification NotificationService
	Tables       TablesService
}

func NewService(rep *repository.Repository, cfg *config.Config, log zerolog.Logger) *Service {
	validate := validator.New()

	permissions := NewPermissionService(rep.Publication, log)
	notifications := NewNotificationService(rep, log)
	compliance := NewComplianceService(rep, log)

	return &Service{
		Permission:   permissions,
		Article:      NewArticleService(rep, permissions, notifications, validate, log),
		Revision:     NewRevisionService(rep, permissions, validate, log),
		Submission:   NewSubmissionService(rep, permissions, compliance, notifications, cfg.EnforceGuidelines, log),
		Compliance:   compliance,
		Notification: notifications,
		Tables:       NewTablesService(rep.Tables),
	}
}
