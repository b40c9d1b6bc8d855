package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskmarket/internal/common"
	"taskmarket/internal/models"
	"taskmarket/internal/syncer"
)

// TaskService manages posted tasks. Posting costs one permit; assignment
// happens through an accepted application.
type TaskService interface {
	Create(ctx context.Context, ownerID int64, title, description string) (*models.Task, error)
	List(ctx context.Context) ([]models.Task, error)
	Get(ctx context.Context, id int64) (*models.Task, error)
	UpdateStatus(ctx context.Context, actorID, taskID int64, status models.TaskStatus) (*models.Task, error)
	Assign(ctx context.Context, taskID, assigneeID int64) (*models.Task, error)
}

type taskService struct {
	engine   *syncer.Engine
	accounts AccountService
}

func NewTaskService(engine *syncer.Engine, accounts AccountService) TaskService {
	return &taskService{engine: engine, accounts: accounts}
}

// Create posts a task after spending one of the owner's permits. When no
// permit is left the task is not created and common.ErrNoPermits surfaces so
// the caller can offer a checkout.
func (s *taskService) Create(ctx context.Context, ownerID int64, title, description string) (*models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("task title required: %w", common.ErrValidation)
	}

	if err := s.accounts.ConsumePermit(ctx, ownerID); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: description,
		OwnerID:     ownerID,
		Status:      models.TaskStatusOpen,
		CreatedAt:   time.Now().UTC(),
	}
	doc, err := models.ToDoc(task)
	if err != nil {
		return nil, err
	}
	created, err := s.engine.Create(ctx, models.CollectionTasks, doc)
	if err != nil {
		return nil, err
	}

	out := &models.Task{}
	if err := models.FromDoc(created, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *taskService) List(ctx context.Context) ([]models.Task, error) {
	docs, err := s.engine.List(ctx, models.CollectionTasks)
	if err != nil {
		return nil, err
	}
	tasks := make([]models.Task, 0, len(docs))
	for _, doc := range docs {
		var task models.Task
		if err := models.FromDoc(doc, &task); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *taskService) Get(ctx context.Context, id int64) (*models.Task, error) {
	doc, err := s.engine.Get(ctx, models.CollectionTasks, id)
	if err != nil {
		return nil, err
	}
	task := &models.Task{}
	if err := models.FromDoc(doc, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateStatus moves a task through its lifecycle. Only the owner may change
// the status.
func (s *taskService) UpdateStatus(ctx context.Context, actorID, taskID int64, status models.TaskStatus) (*models.Task, error) {
	switch status {
	case models.TaskStatusOpen, models.TaskStatusAssigned, models.TaskStatusDone, models.TaskStatusCancelled:
	default:
		return nil, fmt.Errorf("unknown status %q: %w", status, common.ErrValidation)
	}

	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != actorID {
		return nil, fmt.Errorf("only the owner may change task %d: %w", taskID, common.ErrUnauthorized)
	}

	task.Status = status
	return s.put(ctx, task)
}

// Assign sets the assignee and marks the task assigned. Called by the
// application service when an application is accepted.
func (s *taskService) Assign(ctx context.Context, taskID, assigneeID int64) (*models.Task, error) {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskStatusOpen {
		return nil, fmt.Errorf("task %d is not open: %w", taskID, common.ErrValidation)
	}

	task.AssigneeID = assigneeID
	task.Status = models.TaskStatusAssigned
	return s.put(ctx, task)
}

func (s *taskService) put(ctx context.Context, task *models.Task) (*models.Task, error) {
	doc, err := models.ToDoc(task)
	if err != nil {
		return nil, err
	}
	updated, err := s.engine.Put(ctx, models.CollectionTasks, doc)
	if err != nil {
		return nil, err
	}
	out := &models.Task{}
	if err := models.FromDoc(updated, out); err != nil {
		return nil, err
	}
	return out, nil
}
