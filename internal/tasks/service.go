package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/K-nass/task-management/internal/shared"
)

// Service applies ownership rules on top of the task repository.
type Service struct {
	repo     Repository
	logger   *slog.Logger
	validate *validator.Validate
}

// NewService constructs a new Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, validate: validator.New()}
}

// Create stores a task owned by userID.
func (s *Service) Create(ctx context.Context, userID int64, req CreateTaskRequest) (*Task, error) {
	req.normalize()
	if err := s.validate.Struct(req); err != nil {
		return nil, translate(err)
	}
	task, err := s.repo.Create(ctx, Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		UserID:      userID,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("task created", slog.Int64("task_id", task.ID), slog.Int64("user_id", userID))
	return task, nil
}

// List returns the tasks owned by userID, newest first.
func (s *Service) List(ctx context.Context, userID int64) ([]Task, error) {
	list, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Task{}
	}
	return list, nil
}

// Update merges the allow-listed fields of req into the task. The task must
// exist and belong to userID.
func (s *Service) Update(ctx context.Context, userID, id int64, req UpdateTaskRequest) (*Task, error) {
	req.normalize()
	if err := s.validate.Struct(req); err != nil {
		return nil, translate(err)
	}
	var updated *Task
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		task, err := s.owned(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		req.apply(task)
		updated, err = tx.Update(ctx, *task)
		return err
	})
	if err != nil {
		return nil, notFound(err)
	}
	return updated, nil
}

// Delete permanently removes the task. The task must exist and belong to
// userID.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := s.owned(ctx, tx, userID, id); err != nil {
			return err
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return notFound(err)
	}
	s.logger.Debug("task deleted", slog.Int64("task_id", id), slog.Int64("user_id", userID))
	return nil
}

// owned loads the task unscoped so a foreign task reports "Not authorized"
// rather than "Task not found".
func (s *Service) owned(ctx context.Context, tx TxRepository, userID, id int64) (*Task, error) {
	task, err := tx.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		s.logger.Info("task ownership rejected", slog.Int64("task_id", id), slog.Int64("user_id", userID))
		return nil, shared.Forbidden(MsgNotAuthorized)
	}
	return task, nil
}

func notFound(err error) error {
	var domainErr *shared.Error
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NotFound(MsgTaskNotFound)
	}
	return fmt.Errorf("tasks: %w", err)
}

func translate(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return shared.Validation("Invalid task data")
	}
	switch fieldErrs[0].Field() {
	case "Title":
		return shared.Validation(MsgTitleRequired)
	case "Status":
		return shared.Validation(MsgInvalidStatus)
	}
	return shared.Validation("Invalid task data")
}
