package sharedexpense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/fkhayef/sharedexpenses/internal/database"
)

// Repository is the PostgreSQL Store. Writers lock the split row with
// SELECT ... FOR UPDATE for the whole unit of work; readers use a read-only
// repeatable-read snapshot.
type Repository struct {
	db          *sql.DB
	lockTimeout time.Duration
}

// NewRepository creates a new shared expense repository. A positive
// lockTimeout bounds how long a writer waits for a locked split.
func NewRepository(db *sql.DB, lockTimeout time.Duration) *Repository {
	return &Repository{db: db, lockTimeout: lockTimeout}
}

var _ Store = (*Repository)(nil)

const splitColumns = `
	id, expense_id, paid_by_user_id, total_amount, split_type, description,
	group_name, is_settled, settled_at, version, created_at, updated_at`

const participantColumns = `
	id, shared_expense_id, user_id, external_name, external_email, share_amount,
	share_percentage, share_units, is_paid, paid_at, status, notes,
	dispute_reason, updated_at`

// queryer is satisfied by *sql.Tx and *sql.DB
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSplit(row rowScanner) (*SharedExpense, error) {
	se := &SharedExpense{}
	err := row.Scan(
		&se.ID,
		&se.ExpenseID,
		&se.PayerID,
		&se.TotalAmount,
		&se.SplitType,
		&se.Description,
		&se.GroupName,
		&se.IsSettled,
		&se.SettledAt,
		&se.Version,
		&se.CreatedAt,
		&se.UpdatedAt,
	)
	return se, err
}

func scanParticipant(row rowScanner) (*Participant, error) {
	p := &Participant{}
	err := row.Scan(
		&p.ID,
		&p.SharedExpenseID,
		&p.UserID,
		&p.ExternalName,
		&p.ExternalEmail,
		&p.ShareAmount,
		&p.SharePercentage,
		&p.ShareUnits,
		&p.IsPaid,
		&p.PaidAt,
		&p.Status,
		&p.Notes,
		&p.DisputeReason,
		&p.UpdatedAt,
	)
	return p, err
}

// Create implements Writer
func (r *Repository) Create(ctx context.Context, se *SharedExpense) (*SharedExpense, error) {
	var created *SharedExpense
	err := database.WithTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		query := `
			INSERT INTO shared_expenses (
				expense_id, paid_by_user_id, total_amount, split_type, description,
				group_name, is_settled, settled_at, version, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, $10)
			RETURNING id, version
		`

		stored := se.Clone()
		err := tx.QueryRowContext(ctx, query,
			stored.ExpenseID,
			stored.PayerID,
			stored.TotalAmount,
			stored.SplitType,
			stored.Description,
			stored.GroupName,
			stored.IsSettled,
			stored.SettledAt,
			stored.CreatedAt,
			stored.UpdatedAt,
		).Scan(&stored.ID, &stored.Version)
		if err != nil {
			return fmt.Errorf("failed to create shared expense: %w", mapError(err))
		}

		if err := r.syncParticipants(ctx, tx, stored); err != nil {
			return err
		}
		if err := stored.Verify(); err != nil {
			return err
		}

		se.ID = stored.ID
		if err := r.insertEvents(ctx, tx, se.TakeEvents()); err != nil {
			return err
		}

		created = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID implements Reader
func (r *Repository) GetByID(ctx context.Context, id int64) (*SharedExpense, error) {
	var se *SharedExpense
	err := database.WithTx(ctx, r.db, database.SnapshotTx, func(tx *sql.Tx) error {
		var err error
		se, err = r.load(ctx, tx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return se, nil
}

// ListByUser implements Reader
func (r *Repository) ListByUser(ctx context.Context, userID int64, filter ListFilter) ([]*SharedExpense, error) {
	query := `
		SELECT ` + splitColumns + `
		FROM shared_expenses se
		WHERE (se.paid_by_user_id = $1
		       OR EXISTS (
		           SELECT 1 FROM shared_expense_participants sep
		           WHERE sep.shared_expense_id = se.id AND sep.user_id = $1
		       ))
		  AND ($2::text = '' OR strpos(lower(se.group_name), lower($2::text)) > 0)
		  AND ($3::boolean IS NULL OR se.is_settled = $3)
		ORDER BY se.created_at DESC, se.id DESC
	`

	var settled sql.NullBool
	if filter.Settled != nil {
		settled = sql.NullBool{Bool: *filter.Settled, Valid: true}
	}

	var splits []*SharedExpense
	err := database.WithTx(ctx, r.db, database.SnapshotTx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, userID, filter.GroupName, settled)
		if err != nil {
			return fmt.Errorf("failed to list shared expenses: %w", err)
		}
		defer rows.Close()

		splits = make([]*SharedExpense, 0)
		byID := make(map[int64]*SharedExpense)
		ids := make([]int64, 0)
		for rows.Next() {
			se, err := scanSplit(rows)
			if err != nil {
				return fmt.Errorf("failed to scan shared expense: %w", err)
			}
			splits = append(splits, se)
			byID[se.ID] = se
			ids = append(ids, se.ID)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate shared expenses: %w", err)
		}
		rows.Close()

		if len(ids) == 0 {
			return nil
		}

		participants, err := r.loadParticipants(ctx, tx, `shared_expense_id = ANY($1)`, pq.Array(ids))
		if err != nil {
			return err
		}
		for _, p := range participants {
			if se, ok := byID[p.SharedExpenseID]; ok {
				se.Participants = append(se.Participants, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return splits, nil
}

// ListEvents implements Reader
func (r *Repository) ListEvents(ctx context.Context, id int64) ([]Event, error) {
	var events []Event
	err := database.WithTx(ctx, r.db, database.SnapshotTx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM shared_expenses WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check shared expense: %w", err)
		}
		if !exists {
			return ErrSplitNotFound
		}

		query := `
			SELECT id, shared_expense_id, event_type, actor_id, participant_id, detail, created_at
			FROM shared_expense_events
			WHERE shared_expense_id = $1
			ORDER BY created_at, id
		`
		rows, err := tx.QueryContext(ctx, query, id)
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}
		defer rows.Close()

		events = make([]Event, 0)
		for rows.Next() {
			var e Event
			if err := rows.Scan(
				&e.ID,
				&e.SharedExpenseID,
				&e.Type,
				&e.ActorID,
				&e.ParticipantID,
				&e.Detail,
				&e.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to scan event: %w", err)
			}
			events = append(events, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Update implements Writer
func (r *Repository) Update(ctx context.Context, id int64, mutate MutateFunc) (*SharedExpense, error) {
	var updated *SharedExpense
	err := database.WithTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if err := database.SetLockTimeout(ctx, tx, r.lockTimeout); err != nil {
			return err
		}

		se, err := r.load(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := mutate(se); err != nil {
			return err
		}
		if err := se.Verify(); err != nil {
			return err
		}

		query := `
			UPDATE shared_expenses
			SET total_amount = $2, split_type = $3, description = $4, group_name = $5,
			    is_settled = $6, settled_at = $7, updated_at = $8, version = version + 1
			WHERE id = $1
			RETURNING version
		`
		err = tx.QueryRowContext(ctx, query,
			se.ID,
			se.TotalAmount,
			se.SplitType,
			se.Description,
			se.GroupName,
			se.IsSettled,
			se.SettledAt,
			se.UpdatedAt,
		).Scan(&se.Version)
		if err != nil {
			return fmt.Errorf("failed to update shared expense: %w", mapError(err))
		}

		if err := r.syncParticipants(ctx, tx, se); err != nil {
			return err
		}
		if err := r.insertEvents(ctx, tx, se.TakeEvents()); err != nil {
			return err
		}

		updated = se
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete implements Writer. Entries and events go with the split through
// ON DELETE CASCADE.
func (r *Repository) Delete(ctx context.Context, id int64, guard MutateFunc) error {
	return database.WithTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if err := database.SetLockTimeout(ctx, tx, r.lockTimeout); err != nil {
			return err
		}

		se, err := r.load(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := guard(se); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM shared_expenses WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete shared expense: %w", mapError(err))
		}
		return nil
	})
}

func (r *Repository) load(ctx context.Context, tx *sql.Tx, id int64, forUpdate bool) (*SharedExpense, error) {
	query := `SELECT ` + splitColumns + ` FROM shared_expenses WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	se, err := scanSplit(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSplitNotFound
		}
		return nil, fmt.Errorf("failed to get shared expense: %w", mapError(err))
	}

	participants, err := r.loadParticipants(ctx, tx, `shared_expense_id = $1`, id)
	if err != nil {
		return nil, err
	}
	se.Participants = participants

	return se, nil
}

func (r *Repository) loadParticipants(ctx context.Context, q queryer, where string, arg any) ([]*Participant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM shared_expense_participants
		WHERE ` + where + `
		ORDER BY shared_expense_id, position, id
	`

	rows, err := q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}

// syncParticipants makes the stored entries match se.Participants: entries
// no longer present are deleted, known ones updated, new ones inserted.
func (r *Repository) syncParticipants(ctx context.Context, tx *sql.Tx, se *SharedExpense) error {
	keep := make([]int64, 0, len(se.Participants))
	for _, p := range se.Participants {
		if p.ID != 0 {
			keep = append(keep, p.ID)
		}
	}

	_, err := tx.ExecContext(ctx,
		`DELETE FROM shared_expense_participants WHERE shared_expense_id = $1 AND NOT (id = ANY($2))`,
		se.ID, pq.Array(keep),
	)
	if err != nil {
		return fmt.Errorf("failed to remove participants: %w", mapError(err))
	}

	update := `
		UPDATE shared_expense_participants
		SET position = $3, share_amount = $4, share_percentage = $5, share_units = $6,
		    is_paid = $7, paid_at = $8, status = $9, notes = $10, dispute_reason = $11,
		    updated_at = $12
		WHERE id = $1 AND shared_expense_id = $2
	`
	insert := `
		INSERT INTO shared_expense_participants (
			shared_expense_id, position, user_id, external_name, external_email,
			share_amount, share_percentage, share_units, is_paid, paid_at, status,
			notes, dispute_reason, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	for i, p := range se.Participants {
		p.SharedExpenseID = se.ID
		if p.ID != 0 {
			_, err := tx.ExecContext(ctx, update,
				p.ID,
				se.ID,
				i,
				p.ShareAmount,
				p.SharePercentage,
				p.ShareUnits,
				p.IsPaid,
				p.PaidAt,
				p.Status,
				p.Notes,
				p.DisputeReason,
				p.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to update participant: %w", mapError(err))
			}
			continue
		}

		err := tx.QueryRowContext(ctx, insert,
			se.ID,
			i,
			p.UserID,
			p.ExternalName,
			p.ExternalEmail,
			p.ShareAmount,
			p.SharePercentage,
			p.ShareUnits,
			p.IsPaid,
			p.PaidAt,
			p.Status,
			p.Notes,
			p.DisputeReason,
			p.UpdatedAt,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("failed to add participant: %w", mapError(err))
		}
	}

	return nil
}

func (r *Repository) insertEvents(ctx context.Context, tx *sql.Tx, events []Event) error {
	query := `
		INSERT INTO shared_expense_events (id, shared_expense_id, event_type, actor_id, participant_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, e := range events {
		_, err := tx.ExecContext(ctx, query,
			e.ID,
			e.SharedExpenseID,
			e.Type,
			e.ActorID,
			e.ParticipantID,
			e.Detail,
			e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to record event: %w", mapError(err))
		}
	}
	return nil
}

// mapError translates PostgreSQL errors the service reacts to
func mapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "40001", "40P01", "55P03":
		// serialization failure, deadlock, lock timeout
		return ErrConcurrentUpdate
	case "23505":
		return ErrDuplicateParticipant
	}
	return err
}
