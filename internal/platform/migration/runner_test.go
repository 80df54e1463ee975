// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-reader/internal/platform/migration"
)

/*
TestToPgx5DSN rewrites postgres URLs for the pgx5 driver.
*/
func TestToPgx5DSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{"postgres", "postgres://reader@db:5432/yomira", "pgx5://reader@db:5432/yomira"},
		{"postgresql", "postgresql://reader@db/yomira?sslmode=disable", "pgx5://reader@db/yomira?sslmode=disable"},
		{"already_pgx5", "pgx5://reader@db/yomira", "pgx5://reader@db/yomira"},
		{"keyword_form", "host=db user=reader", "host=db user=reader"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, migration.ToPgx5DSN(tt.dsn))
		})
	}
}
