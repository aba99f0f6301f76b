package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/pblcoach/internal/db"
	"github.com/alexanderramin/pblcoach/internal/domain"
)

// SQLiteConversationRepo implements ConversationRepo. Save issues several
// statements; run it inside a UnitOfWork to make it atomic.
type SQLiteConversationRepo struct {
	db db.DBTX
}

// NewSQLiteConversationRepo creates a repo over a *sql.DB or *sql.Tx.
func NewSQLiteConversationRepo(db db.DBTX) *SQLiteConversationRepo {
	return &SQLiteConversationRepo{db: db}
}

func (r *SQLiteConversationRepo) Save(ctx context.Context, s *domain.ConversationState) error {
	if s.SessionID == "" {
		return fmt.Errorf("saving conversation: empty session id")
	}

	pc := s.PendingConfirmation
	hasPending := pc != nil
	if pc == nil {
		pc = &domain.PendingConfirmation{}
	}

	query := `INSERT INTO design_sessions (
			id, current_stage, attempts, terminal,
			subject, grade_level, duration, big_idea, essential_question, challenge,
			pending_stage, pending_value, pending_mode, pending_attempts,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_stage = excluded.current_stage,
			attempts = excluded.attempts,
			terminal = excluded.terminal,
			subject = excluded.subject,
			grade_level = excluded.grade_level,
			duration = excluded.duration,
			big_idea = excluded.big_idea,
			essential_question = excluded.essential_question,
			challenge = excluded.challenge,
			pending_stage = excluded.pending_stage,
			pending_value = excluded.pending_value,
			pending_mode = excluded.pending_mode,
			pending_attempts = excluded.pending_attempts,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		s.SessionID,
		string(s.CurrentStageID),
		s.Attempts,
		boolToInt(s.Terminal),
		s.Context.Subject,
		s.Context.GradeLevel,
		s.Context.Duration,
		s.Context.BigIdea,
		s.Context.EssentialQuestion,
		s.Context.Challenge,
		nullableString(string(pc.StageID), hasPending),
		nullableString(pc.PendingValue, hasPending),
		nullableString(string(pc.Mode), hasPending),
		nullableInt(pc.Attempts, hasPending),
		formatTime(s.CreatedAt),
		formatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting design session: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM session_completed_stages WHERE session_id = ?`, s.SessionID); err != nil {
		return fmt.Errorf("clearing completed stages: %w", err)
	}
	for i, id := range s.CompletedStageIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO session_completed_stages (session_id, stage_id, position) VALUES (?, ?, ?)`,
			s.SessionID, string(id), i,
		); err != nil {
			return fmt.Errorf("inserting completed stage %s: %w", id, err)
		}
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM session_project_data WHERE session_id = ?`, s.SessionID); err != nil {
		return fmt.Errorf("clearing project data: %w", err)
	}
	for k, v := range s.ProjectData {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO session_project_data (session_id, data_key, value) VALUES (?, ?, ?)`,
			s.SessionID, k, v,
		); err != nil {
			return fmt.Errorf("inserting project data %s: %w", k, err)
		}
	}
	return nil
}

func (r *SQLiteConversationRepo) GetByID(ctx context.Context, id string) (*domain.ConversationState, error) {
	query := `SELECT id, current_stage, attempts, terminal,
			subject, grade_level, duration, big_idea, essential_question, challenge,
			pending_stage, pending_value, pending_mode, pending_attempts,
			created_at, updated_at
		FROM design_sessions WHERE id = ?`

	var (
		s                              domain.ConversationState
		stageID                        string
		terminal                       int
		pendStage, pendValue, pendMode sql.NullString
		pendAttempts                   sql.NullInt64
		createdAtStr, updatedAtStr     string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.SessionID, &stageID, &s.Attempts, &terminal,
		&s.Context.Subject, &s.Context.GradeLevel, &s.Context.Duration,
		&s.Context.BigIdea, &s.Context.EssentialQuestion, &s.Context.Challenge,
		&pendStage, &pendValue, &pendMode, &pendAttempts,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("design session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning design session: %w", err)
	}

	s.CurrentStageID = domain.StageID(stageID)
	s.Terminal = intToBool(terminal)
	if pendStage.Valid {
		s.PendingConfirmation = &domain.PendingConfirmation{
			StageID:      domain.StageID(pendStage.String),
			PendingValue: stringOrEmpty(pendValue),
			Mode:         domain.ConfirmationLevel(stringOrEmpty(pendMode)),
			Attempts:     int(pendAttempts.Int64),
		}
	}
	if s.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime("updated_at", updatedAtStr); err != nil {
		return nil, err
	}

	if s.CompletedStageIDs, err = r.loadCompleted(ctx, id); err != nil {
		return nil, err
	}
	if s.ProjectData, err = r.loadProjectData(ctx, id); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SQLiteConversationRepo) loadCompleted(ctx context.Context, id string) ([]domain.StageID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT stage_id FROM session_completed_stages WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("listing completed stages: %w", err)
	}
	defer rows.Close()

	var out []domain.StageID
	for rows.Next() {
		var sid string
		if err := rows.Scan(&sid); err != nil {
			return nil, fmt.Errorf("scanning completed stage: %w", err)
		}
		out = append(out, domain.StageID(sid))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating completed stages: %w", err)
	}
	return out, nil
}

func (r *SQLiteConversationRepo) loadProjectData(ctx context.Context, id string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data_key, value FROM session_project_data WHERE session_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("listing project data: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning project data: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project data: %w", err)
	}
	return out, nil
}

func (r *SQLiteConversationRepo) List(ctx context.Context) ([]SessionSummary, error) {
	query := `SELECT s.id, s.current_stage, s.terminal, s.subject, s.grade_level, s.updated_at,
			(SELECT COUNT(*) FROM session_completed_stages c WHERE c.session_id = s.id)
		FROM design_sessions s
		ORDER BY s.updated_at DESC, s.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing design sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var (
			sum          SessionSummary
			stageID      string
			terminal     int
			updatedAtStr string
		)
		if err := rows.Scan(&sum.ID, &stageID, &terminal, &sum.Subject, &sum.GradeLevel, &updatedAtStr, &sum.CompletedCount); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		sum.CurrentStageID = domain.StageID(stageID)
		sum.Terminal = intToBool(terminal)
		if sum.UpdatedAt, err = parseTime("updated_at", updatedAtStr); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return out, nil
}

func (r *SQLiteConversationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM design_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting design session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting design session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("design session %s: %w", id, ErrNotFound)
	}
	return nil
}
