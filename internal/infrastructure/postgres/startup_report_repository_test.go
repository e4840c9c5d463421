package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStartupReportRepository(t *testing.T) {
	t.Run("creates repository with nil pool", func(t *testing.T) {
		repo := NewStartupReportRepository(nil)
		assert.NotNil(t, repo)
		assert.Nil(t, repo.pool)
	})
}
