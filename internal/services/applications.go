package services

import (
	"context"
	"fmt"
	"time"

	"taskmarket/internal/common"
	"taskmarket/internal/models"
	"taskmarket/internal/syncer"
)

// ApplicationService manages applications to open tasks. Accepting an
// application assigns the task and notifies the applicant in one operation.
type ApplicationService interface {
	Apply(ctx context.Context, applicantID, taskID int64, note string) (*models.Application, error)
	ListForTask(ctx context.Context, taskID int64) ([]models.Application, error)
	Accept(ctx context.Context, actorID, applicationID int64) (*models.Application, error)
	Reject(ctx context.Context, actorID, applicationID int64) (*models.Application, error)
}

type applicationService struct {
	engine   *syncer.Engine
	tasks    TaskService
	messages MessageService
}

func NewApplicationService(engine *syncer.Engine, tasks TaskService, messages MessageService) ApplicationService {
	return &applicationService{engine: engine, tasks: tasks, messages: messages}
}

// Apply files an application for an open task. Applying to your own task or
// filing a second pending application for the same task is rejected.
func (s *applicationService) Apply(ctx context.Context, applicantID, taskID int64, note string) (*models.Application, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.OwnerID == applicantID {
		return nil, fmt.Errorf("cannot apply to your own task: %w", common.ErrValidation)
	}
	if task.Status != models.TaskStatusOpen {
		return nil, fmt.Errorf("task %d is not open: %w", taskID, common.ErrValidation)
	}

	existing, err := s.ListForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	for _, app := range existing {
		if app.ApplicantID == applicantID && app.Status == models.ApplicationStatusPending {
			return nil, fmt.Errorf("application already pending: %w", common.ErrValidation)
		}
	}

	app := &models.Application{
		TaskID:      taskID,
		ApplicantID: applicantID,
		Note:        note,
		Status:      models.ApplicationStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	doc, err := models.ToDoc(app)
	if err != nil {
		return nil, err
	}
	created, err := s.engine.Create(ctx, models.CollectionApplications, doc)
	if err != nil {
		return nil, err
	}

	out := &models.Application{}
	if err := models.FromDoc(created, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *applicationService) ListForTask(ctx context.Context, taskID int64) ([]models.Application, error) {
	docs, err := s.engine.List(ctx, models.CollectionApplications)
	if err != nil {
		return nil, err
	}
	var apps []models.Application
	for _, doc := range docs {
		var app models.Application
		if err := models.FromDoc(doc, &app); err != nil {
			return nil, err
		}
		if app.TaskID == taskID {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

// Accept marks the application accepted, assigns the task to the applicant
// and sends the applicant a notification message referencing the task.
// Only the task owner may accept.
func (s *applicationService) Accept(ctx context.Context, actorID, applicationID int64) (*models.Application, error) {
	app, task, err := s.loadForReview(ctx, actorID, applicationID)
	if err != nil {
		return nil, err
	}

	if _, err := s.tasks.Assign(ctx, task.ID, app.ApplicantID); err != nil {
		return nil, err
	}

	app.Status = models.ApplicationStatusAccepted
	updated, err := s.put(ctx, app)
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf("Your application for %q was accepted.", task.Title)
	if _, err := s.messages.Send(ctx, actorID, app.ApplicantID, task.ID, body); err != nil {
		return nil, err
	}
	return updated, nil
}

// Reject marks the application rejected. Only the task owner may reject.
func (s *applicationService) Reject(ctx context.Context, actorID, applicationID int64) (*models.Application, error) {
	app, _, err := s.loadForReview(ctx, actorID, applicationID)
	if err != nil {
		return nil, err
	}
	app.Status = models.ApplicationStatusRejected
	return s.put(ctx, app)
}

// loadForReview fetches a pending application and its task, verifying the
// actor owns the task.
func (s *applicationService) loadForReview(ctx context.Context, actorID, applicationID int64) (*models.Application, *models.Task, error) {
	doc, err := s.engine.Get(ctx, models.CollectionApplications, applicationID)
	if err != nil {
		return nil, nil, err
	}
	app := &models.Application{}
	if err := models.FromDoc(doc, app); err != nil {
		return nil, nil, err
	}
	if app.Status != models.ApplicationStatusPending {
		return nil, nil, fmt.Errorf("application %d is not pending: %w", applicationID, common.ErrValidation)
	}

	task, err := s.tasks.Get(ctx, app.TaskID)
	if err != nil {
		return nil, nil, err
	}
	if task.OwnerID != actorID {
		return nil, nil, fmt.Errorf("only the task owner may review applications: %w", common.ErrUnauthorized)
	}
	return app, task, nil
}

func (s *applicationService) put(ctx context.Context, app *models.Application) (*models.Application, error) {
	doc, err := models.ToDoc(app)
	if err != nil {
		return nil, err
	}
	updated, err := s.engine.Put(ctx, models.CollectionApplications, doc)
	if err != nil {
		return nil, err
	}
	out := &models.Application{}
	if err := models.FromDoc(updated, out); err != nil {
		return nil, err
	}
	return out, nil
}
