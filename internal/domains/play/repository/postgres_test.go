package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bgpiesa-backend/internal/domains/play/model"
)

func intPtr(v int) *int { return &v }

func TestBuildListQuery(t *testing.T) {
	t.Run("joins author and orders by title", func(t *testing.T) {
		query, args := BuildListQuery(model.ListFilter{})

		assert.Contains(t, query, "FROM play p JOIN author a ON a.id = p.author_id")
		assert.Contains(t, query, "ORDER BY p.title_bg ASC")
		assert.NotContains(t, query, "WHERE")
		assert.Empty(t, args)
	})

	t.Run("search matches either title", func(t *testing.T) {
		query, args := BuildListQuery(model.ListFilter{Search: "Бай"})

		assert.Contains(t, query, "LOWER(p.title_bg) LIKE LOWER($1)")
		assert.Contains(t, query, "LOWER(p.title_en) LIKE LOWER($2)")
		assert.Contains(t, query, " OR ")
		assert.Equal(t, []interface{}{"%Бай%", "%Бай%"}, args)
	})

	t.Run("all filters", func(t *testing.T) {
		authorID := int64(7)
		query, args := BuildListQuery(model.ListFilter{
			AuthorID:              &authorID,
			Genre:                 "Комедия",
			Theme:                 "Семейство",
			YearMin:               intPtr(1900),
			YearMax:               intPtr(1950),
			MaleParticipantsMin:   intPtr(2),
			FemaleParticipantsMax: intPtr(3),
		})

		assert.Contains(t, query, "p.author_id = $1")
		assert.Contains(t, query, "p.genre = $2")
		assert.Contains(t, query, "p.theme = $3")
		assert.Contains(t, query, "p.year >= $4")
		assert.Contains(t, query, "p.year <= $5")
		assert.Contains(t, query, "p.male_participants >= $6")
		assert.Contains(t, query, "p.female_participants <= $7")
		assert.NotContains(t, query, "p.male_participants <=")
		assert.Equal(t, []interface{}{int64(7), "Комедия", "Семейство", 1900, 1950, 2, 3}, args)
	})

	t.Run("zero bounds are kept", func(t *testing.T) {
		query, args := BuildListQuery(model.ListFilter{FemaleParticipantsMin: intPtr(0)})

		assert.Contains(t, query, "p.female_participants >= $1")
		assert.Equal(t, []interface{}{0}, args)
	})
}
