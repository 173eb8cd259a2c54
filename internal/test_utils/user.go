package test_utils

import (
	"context"
	"testing"

	"github.com/eventcal/eventcal/internal/database"
	"github.com/stretchr/testify/require"
)

// InsertUser stores a user row with default settings and returns its id.
// Repositories with a users foreign key use it to seed their tests.
func InsertUser(t *testing.T, db database.DB, uid string, name string) int {
	t.Helper()
	var id int
	err := db.QueryRow(context.Background(),
		`INSERT INTO users (uid, name, picture_path, timezone, week_first_day, badge_variant, visible_from,
				visible_to, working_hours) VALUES ($1, $2, '', 'UTC', 0, 'colored', 0, 24, '{}') RETURNING id`,
		uid, name,
	).Scan(&id)
	require.NoError(t, err)
	return id
}
