package schema_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/lmsseed/internal/schema"
	testhelpers "github.com/vvka-141/lmsseed/internal/testing"
)

func TestApply_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	pool := testhelpers.NewNoticePool(t, testhelpers.NewTestDatabase(t))

	require.NoError(t, schema.Apply(ctx, pool))
	pool.Capture.Reset()
	require.NoError(t, schema.Apply(ctx, pool), "second apply must be a no-op")
	assert.Len(t, pool.Capture.Matching("already exists, skipping"), len(schema.Tables)+countIndexes(schema.DDL()),
		"every table and index is skipped on re-apply")

	for _, table := range schema.Tables {
		var exists bool
		err := pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", "public."+table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "table %s", table)
	}
}

func TestSchema_EnforcesEnrollmentConstraints(t *testing.T) {
	ctx := context.Background()
	pool := testhelpers.NewSchemaPool(t)

	_, err := pool.Exec(ctx, `INSERT INTO users (username, password) VALUES ('t', 'x')`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO courses (name, teacher_id) VALUES ('Go', 1)`)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `INSERT INTO course_members (course_id, user_id, roles) VALUES (1, 1, 'std')`)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `INSERT INTO course_members (course_id, user_id, roles) VALUES (1, 1, 'ast')`)
	assert.Error(t, err, "duplicate (course, user) pair")

	_, err = pool.Exec(ctx, `INSERT INTO course_members (course_id, user_id, roles) VALUES (1, 1, 'tch')`)
	assert.Error(t, err, "role outside std/ast")

	var price int
	require.NoError(t, pool.QueryRow(ctx, `SELECT price FROM courses WHERE id = 1`).Scan(&price))
	assert.Equal(t, 10000, price, "column default")
}

func TestDDL_NotEmpty(t *testing.T) {
	assert.Contains(t, schema.DDL(), "CREATE TABLE IF NOT EXISTS comments")
}

func countIndexes(ddl string) int {
	return strings.Count(ddl, "CREATE INDEX IF NOT EXISTS") + strings.Count(ddl, "CREATE UNIQUE INDEX IF NOT EXISTS")
}
