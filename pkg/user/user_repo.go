package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eventcal/eventcal/internal/database"
	"github.com/eventcal/eventcal/pkg/layout"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

var ErrUserNotFound = errors.New("user not found")

type Repo interface {
	CreateUser(ctx context.Context, user User) (int, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	UpdateUser(ctx context.Context, userId int, user User) (User, error)
	DeleteUser(ctx context.Context, id int) error
	GetAllUsers(ctx context.Context) ([]User, error)
}

type UserRepoImpl struct {
	db database.DB
}

func NewUserRepo(db database.DB) *UserRepoImpl {
	return &UserRepoImpl{db: db}
}

const userColumns = `id, uid, name, picture_path, timezone, week_first_day, badge_variant,
				visible_from, visible_to, working_hours`

func (u *UserRepoImpl) CreateUser(ctx context.Context, user User) (int, error) {
	workingHours, err := marshalWorkingHours(user.Settings.WorkingHours)
	if err != nil {
		return 0, err
	}
	query := `INSERT INTO users (uid, name, picture_path, timezone, week_first_day, badge_variant, visible_from,
				visible_to, working_hours) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	var id int
	err = u.db.QueryRow(ctx, query,
		user.Uid,
		user.Name,
		user.PicturePath,
		user.Settings.Timezone,
		int(user.Settings.WeekFirstDay),
		string(user.Settings.BadgeVariant),
		user.Settings.VisibleHours.From,
		user.Settings.VisibleHours.To,
		workingHours,
	).Scan(&id)
	if err != nil {
		log.Errorf("failed to create user: %v", err)
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

func (u *UserRepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(u.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debugf("user with id %d not found", id)
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	return user, nil
}

func (u *UserRepoImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	user, err := scanUser(u.db.QueryRow(ctx, query, uid))
	if errors.Is(err, pgx.ErrNoRows) {
		log.Infof("user with uid %s not found", uid)
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	return user, nil
}

func (u *UserRepoImpl) UpdateUser(ctx context.Context, userId int, user User) (User, error) {
	workingHours, err := marshalWorkingHours(user.Settings.WorkingHours)
	if err != nil {
		return User{}, err
	}
	query := `UPDATE users SET name = $1, picture_path = $2, timezone = $3, week_first_day = $4, badge_variant = $5,
				visible_from = $6, visible_to = $7, working_hours = $8 WHERE id = $9`
	result, err := u.db.Exec(ctx, query,
		user.Name,
		user.PicturePath,
		user.Settings.Timezone,
		int(user.Settings.WeekFirstDay),
		string(user.Settings.BadgeVariant),
		user.Settings.VisibleHours.From,
		user.Settings.VisibleHours.To,
		workingHours,
		userId,
	)
	if err != nil {
		return User{}, err
	}
	if result.RowsAffected() == 0 {
		log.Info("no rows affected of updating user")
		return User{}, ErrUserNotFound
	}
	user.Id = userId
	return user, nil
}

func (u *UserRepoImpl) DeleteUser(ctx context.Context, id int) error {
	result, err := u.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		log.Info("no rows affected of deleting user")
		return ErrUserNotFound
	}
	return nil
}

func (u *UserRepoImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	rows, err := u.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		log.Errorf("failed to get users: %v", err)
		return nil, err
	}
	defer rows.Close()
	users := make([]User, 0, 10)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.Errorf("failed to scan user: %v", err)
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("error iterating over rows: %v", err)
		return nil, err
	}
	return users, nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	var weekFirstDay int
	var badgeVariant string
	var workingHours []byte
	err := row.Scan(
		&user.Id,
		&user.Uid,
		&user.Name,
		&user.PicturePath,
		&user.Settings.Timezone,
		&weekFirstDay,
		&badgeVariant,
		&user.Settings.VisibleHours.From,
		&user.Settings.VisibleHours.To,
		&workingHours,
	)
	if err != nil {
		return User{}, err
	}
	user.Settings.WeekFirstDay = time.Weekday(weekFirstDay)
	user.Settings.BadgeVariant = BadgeVariant(badgeVariant)
	user.Settings.WorkingHours, err = unmarshalWorkingHours(workingHours)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func marshalWorkingHours(wh layout.WorkingHours) ([]byte, error) {
	byDay := make(map[int]layout.HourRange, len(wh))
	for day, r := range wh {
		byDay[int(day)] = r
	}
	data, err := json.Marshal(byDay)
	if err != nil {
		return nil, fmt.Errorf("failed to encode working hours: %w", err)
	}
	return data, nil
}

func unmarshalWorkingHours(data []byte) (layout.WorkingHours, error) {
	wh := make(layout.WorkingHours)
	if len(data) == 0 {
		return wh, nil
	}
	var byDay map[int]layout.HourRange
	if err := json.Unmarshal(data, &byDay); err != nil {
		return nil, fmt.Errorf("failed to decode working hours: %w", err)
	}
	for day, r := range byDay {
		wh[time.Weekday(day)] = r
	}
	return wh, nil
}
