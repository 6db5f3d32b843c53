package task

import (
	"context"

	"stockward/internal/core/apperror"
	appctx "stockward/internal/core/context"
	"stockward/internal/core/entity"
	"stockward/internal/core/id"
	"stockward/internal/domain/process"
	"stockward/internal/domain/transaction"
)

// Generator derives fulfillment tasks from committed transactions.
// It implements transaction.TaskCreator and runs after the inventory commit;
// its errors are logged and swallowed by the caller.
type Generator struct {
	repo  Repository
	types TypeRepository
}

// NewGenerator creates a task generator.
func NewGenerator(repo Repository, types TypeRepository) *Generator {
	return &Generator{repo: repo, types: types}
}

// CreateForTransaction maps a committed transaction onto tasks:
// inward to one putaway, outward to one pickup per consumed stock line,
// transfer to one transfer task. Adjustments and returns generate none.
func (g *Generator) CreateForTransaction(ctx context.Context, txn *transaction.Transaction, result *transaction.MutationResult, req *transaction.Request) ([]id.ID, error) {
	var tasks []*Task

	switch txn.ProcessKind {
	case process.KindInward:
		tasks = append(tasks, g.newTask(ctx, TypePutaway, txn, req, &Task{
			ItemID:       txn.ItemID,
			Quantity:     txn.Quantity,
			ToLocationID: txn.LocationID,
		}))

	case process.KindOutward:
		for _, line := range result.Lines {
			loc := line.LocationID
			recID := line.StockRecordID
			tasks = append(tasks, g.newTask(ctx, TypePickup, txn, req, &Task{
				ItemID:         txn.ItemID,
				Quantity:       line.Quantity,
				StockRecordID:  &recID,
				FromLocationID: &loc,
				ToLocationID:   req.StagingLocationID,
			}))
		}

	case process.KindTransfer:
		tasks = append(tasks, g.newTask(ctx, TypeTransfer, txn, req, &Task{
			ItemID:         txn.ItemID,
			Quantity:       txn.Quantity,
			FromLocationID: txn.FromLocationID,
			ToLocationID:   txn.ToLocationID,
		}))

	default:
		return nil, nil
	}

	if len(tasks) == 0 {
		return nil, nil
	}

	// Task types are operator-managed catalog entries; a deactivated or
	// missing one aborts generation for the whole transaction.
	if _, err := g.types.GetActiveByCode(ctx, tasks[0].TypeCode); err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewConfiguration("task type " + tasks[0].TypeCode.String() + " is not configured")
		}
		return nil, err
	}

	ids := make([]id.ID, 0, len(tasks))
	for _, t := range tasks {
		if err := g.repo.Create(ctx, t); err != nil {
			return ids, err
		}
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// newTask fills the shared fields of a generated task.
func (g *Generator) newTask(ctx context.Context, code TypeCode, txn *transaction.Transaction, req *transaction.Request, t *Task) *Task {
	t.Base = entity.NewBase(appctx.GetActorID(ctx))
	t.TypeCode = code
	t.TransactionID = txn.ID
	t.AssigneeID = req.AssigneeID
	t.State = StatePending
	return t
}
