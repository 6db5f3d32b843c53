// Package task_repo provides PostgreSQL storage for fulfillment tasks and
// the task type catalog.
package task_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockward/internal/core/apperror"
	"stockward/internal/core/id"
	"stockward/internal/domain/task"
	"stockward/internal/infrastructure/storage/postgres"
)

const tasksTable = "fulfillment_tasks"

// TaskRepo implements task.Repository.
type TaskRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

// NewTaskRepo creates a task repository.
func NewTaskRepo(txManager *postgres.TxManager) *TaskRepo {
	return &TaskRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   postgres.ExtractDBColumns[task.Task](),
	}
}

// Create inserts a new task.
func (r *TaskRepo) Create(ctx context.Context, t *task.Task) error {
	data := postgres.StructToMap(t)

	q := r.builder.Insert(tasksTable).SetMap(data)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetByID returns a task.
func (r *TaskRepo) GetByID(ctx context.Context, taskID id.ID) (*task.Task, error) {
	return r.get(ctx, taskID, false)
}

// GetByIDForUpdate locks the task row for a state transition.
func (r *TaskRepo) GetByIDForUpdate(ctx context.Context, taskID id.ID) (*task.Task, error) {
	return r.get(ctx, taskID, true)
}

func (r *TaskRepo) get(ctx context.Context, taskID id.ID, forUpdate bool) (*task.Task, error) {
	q := r.builder.Select(r.columns...).
		From(tasksTable).
		Where(squirrel.Eq{"id": taskID}).
		Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t task.Task
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("task", taskID)
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &t, nil
}

// Update persists lifecycle fields of a locked task.
func (r *TaskRepo) Update(ctx context.Context, t *task.Task) error {
	q := r.builder.Update(tasksTable).
		Set("state", t.State).
		Set("completed_by", t.CompletedBy).
		Set("completed_at", t.CompletedAt).
		Set("assignee_id", t.AssigneeID).
		Set("updated_by", t.UpdatedBy).
		Set("updated_at", t.UpdatedAt).
		Where(squirrel.Eq{"id": t.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("task", t.ID)
	}
	return nil
}

// ListByTransaction returns a transaction's tasks in creation order.
func (r *TaskRepo) ListByTransaction(ctx context.Context, transactionID id.ID) ([]task.Task, error) {
	q := r.builder.Select(r.columns...).
		From(tasksTable).
		Where(squirrel.Eq{"transaction_id": transactionID}).
		OrderBy("created_at ASC", "id ASC")

	return r.selectTasks(ctx, q)
}

// ListPendingPickupsForUpdate locks an outward's pending pickup tasks.
func (r *TaskRepo) ListPendingPickupsForUpdate(ctx context.Context, transactionID id.ID) ([]task.Task, error) {
	q := r.builder.Select(r.columns...).
		From(tasksTable).
		Where(squirrel.Eq{
			"transaction_id": transactionID,
			"type_code":      task.TypePickup,
			"state":          task.StatePending,
		}).
		OrderBy("id ASC").
		Suffix("FOR UPDATE")

	return r.selectTasks(ctx, q)
}

// ListByAssignee returns a worker's tasks, newest first.
func (r *TaskRepo) ListByAssignee(ctx context.Context, assigneeID string, state *task.State, limit, offset int) ([]task.Task, error) {
	q := r.builder.Select(r.columns...).
		From(tasksTable).
		Where(squirrel.Eq{"assignee_id": assigneeID}).
		OrderBy("created_at DESC", "id DESC")

	if state != nil {
		q = q.Where(squirrel.Eq{"state": *state})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	return r.selectTasks(ctx, q)
}

// CountPendingByType returns the pending backlog per task kind.
func (r *TaskRepo) CountPendingByType(ctx context.Context) (map[task.TypeCode]int64, error) {
	q := r.builder.Select("type_code", "COUNT(*)").
		From(tasksTable).
		Where(squirrel.Eq{"state": task.StatePending}).
		GroupBy("type_code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("count pending tasks: %w", err)
	}
	defer rows.Close()

	counts := make(map[task.TypeCode]int64)
	for rows.Next() {
		var (
			code  task.TypeCode
			count int64
		)
		if err := rows.Scan(&code, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[code] = count
	}
	return counts, rows.Err()
}

func (r *TaskRepo) selectTasks(ctx context.Context, q squirrel.SelectBuilder) ([]task.Task, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var tasks []task.Task
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &tasks, sql, args...); err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	return tasks, nil
}
