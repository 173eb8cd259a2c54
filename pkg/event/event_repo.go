package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventcal/eventcal/internal/database"
	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository interface {
	WithTransaction(ctx context.Context, fn func(repo EventRepository) error) error
	StoreEvent(ctx context.Context, userId int, event calendar.Event) (string, error)
	// GetEvents returns the user's events overlapping [from, to] and every recurring
	// event that starts before to.
	GetEvents(ctx context.Context, userId int, from, to time.Time) ([]calendar.Event, error)
	GetEvent(ctx context.Context, userId int, uid string) (calendar.Event, error)
	UpdateEvent(ctx context.Context, userId int, event calendar.Event) error
	DeleteEvent(ctx context.Context, userId int, uid string) error
}

type EventRepositoryImpl struct {
	db database.DB
	tx pgx.Tx
}

func NewEventRepo(db database.DB) *EventRepositoryImpl {
	return &EventRepositoryImpl{db: db}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *EventRepositoryImpl) getQueryer() interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *EventRepositoryImpl) WithTransaction(ctx context.Context, fn func(repo EventRepository) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback will be a no-op if the transaction was already committed
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &EventRepositoryImpl{db: r.db, tx: tx}
	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *EventRepositoryImpl) StoreEvent(ctx context.Context, userId int, event calendar.Event) (string, error) {
	query := `INSERT INTO calendar_event (uid, user_id, title, description, start_time, end_time, color, recurrence)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	uid := uuid.New()
	_, err := r.getQueryer().Exec(ctx, query,
		uid,
		userId,
		event.Title,
		event.Description,
		event.StartTime,
		event.EndTime,
		string(event.Color),
		event.Recurrence,
	)
	if err != nil {
		err := fmt.Errorf("could not store calendar event: %w", err)
		log.Error(err)
		return "", err
	}
	return uid.String(), nil
}

const eventColumns = `e.uid, e.title, e.description, e.start_time, e.end_time, e.color, e.recurrence,
				u.uid, u.name, u.picture_path`

func (r *EventRepositoryImpl) GetEvents(ctx context.Context, userId int, from, to time.Time) ([]calendar.Event, error) {
	query := `SELECT ` + eventColumns + `
			  FROM calendar_event e JOIN users u ON u.id = e.user_id
			  WHERE e.user_id = $1
			    AND e.start_time <= $2
			    AND (e.end_time >= $3 OR e.recurrence <> '')
			  ORDER BY e.start_time, e.uid`

	rows, err := r.getQueryer().Query(ctx, query, userId, to, from)
	if err != nil {
		err := fmt.Errorf("could not query calendar events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]calendar.Event, 0, 10)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate calendar events: %w", err)
	}
	return events, nil
}

func (r *EventRepositoryImpl) GetEvent(ctx context.Context, userId int, uid string) (calendar.Event, error) {
	eventUid, err := uuid.Parse(uid)
	if err != nil {
		return calendar.Event{}, ErrEventNotFound
	}
	query := `SELECT ` + eventColumns + `
			  FROM calendar_event e JOIN users u ON u.id = e.user_id
			  WHERE e.user_id = $1 AND e.uid = $2`
	event, err := scanEvent(r.getQueryer().QueryRow(ctx, query, userId, eventUid))
	if errors.Is(err, pgx.ErrNoRows) {
		return calendar.Event{}, ErrEventNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get calendar event: %w", err)
		log.Error(err)
		return calendar.Event{}, err
	}
	return event, nil
}

func (r *EventRepositoryImpl) UpdateEvent(ctx context.Context, userId int, event calendar.Event) error {
	eventUid, err := uuid.Parse(event.UID)
	if err != nil {
		return ErrEventNotFound
	}
	query := `UPDATE calendar_event
			  SET title = $1, description = $2, start_time = $3, end_time = $4, color = $5, recurrence = $6
			  WHERE uid = $7 AND user_id = $8`
	result, err := r.getQueryer().Exec(ctx, query,
		event.Title,
		event.Description,
		event.StartTime,
		event.EndTime,
		string(event.Color),
		event.Recurrence,
		eventUid,
		userId,
	)
	if err != nil {
		err := fmt.Errorf("could not update calendar event: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *EventRepositoryImpl) DeleteEvent(ctx context.Context, userId int, uid string) error {
	eventUid, err := uuid.Parse(uid)
	if err != nil {
		return ErrEventNotFound
	}
	result, err := r.getQueryer().Exec(ctx, `DELETE FROM calendar_event WHERE uid = $1 AND user_id = $2`, eventUid, userId)
	if err != nil {
		err := fmt.Errorf("could not delete calendar event: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func scanEvent(row pgx.Row) (calendar.Event, error) {
	var event calendar.Event
	var uid uuid.UUID
	var color string
	err := row.Scan(
		&uid,
		&event.Title,
		&event.Description,
		&event.StartTime,
		&event.EndTime,
		&color,
		&event.Recurrence,
		&event.User.Id,
		&event.User.Name,
		&event.User.PicturePath,
	)
	if err != nil {
		return calendar.Event{}, err
	}
	event.UID = uid.String()
	event.Color = calendar.Color(color)
	return event, nil
}
