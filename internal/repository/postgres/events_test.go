package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/eventix/internal/domain"
)

func TestBuildListQueryNoFilters(t *testing.T) {
	q, args := buildListQuery(domain.EventFilter{})

	require.Empty(t, args)
	// the derived-field subselects carry their own WHERE; only the top-level
	// clause must be absent
	require.NotContains(t, q, "\nWHERE ")
	require.NotContains(t, q, "LIMIT")

	// feed ordering: upcoming block first ascending, the rest descending,
	// average rating as tiebreak
	require.Contains(t, q, "CASE WHEN e.status = 'upcoming' THEN 0 ELSE 1 END")
	require.Contains(t, q, "CASE WHEN e.status = 'upcoming' THEN e.start_time END ASC")
	require.Contains(t, q, "CASE WHEN e.status <> 'upcoming' THEN e.start_time END DESC")
	require.Less(t,
		strings.Index(q, "THEN 0 ELSE 1 END"),
		strings.Index(q, "e.start_time END ASC"),
	)
}

func TestBuildListQueryFilters(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	gte, lte := 3.5, 4.5

	q, args := buildListQuery(domain.EventFilter{
		Location:     "Kyiv",
		Status:       "upcoming",
		StartDate:    &start,
		Tag:          "go",
		OnlyFree:     true,
		AvgRatingGTE: &gte,
		AvgRatingLTE: &lte,
		Search:       "meetup",
		Limit:        20,
		Offset:       40,
	})

	require.Contains(t, q, "LOWER(e.location) = LOWER($1)")
	require.Contains(t, q, "e.status = LOWER($2)")
	require.Contains(t, q, "e.start_time::date = $3::date")
	require.Contains(t, q, "t.name ILIKE '%' || $4 || '%'")
	require.Contains(t, q, "> 0") // free seats
	require.Contains(t, q, ">= $5")
	require.Contains(t, q, "<= $6")
	require.Contains(t, q, "e.title ILIKE $7")
	require.Contains(t, q, "e.description ILIKE $7")
	require.Contains(t, q, "LIMIT $8")
	require.Contains(t, q, "OFFSET $9")

	require.Equal(t, []any{
		"Kyiv", "upcoming", start, "go", gte, lte, "%meetup%", 20, 40,
	}, args)
}

func TestBuildListQueryDerivedExprs(t *testing.T) {
	q, _ := buildListQuery(domain.EventFilter{OnlyFree: true})

	// free_seats and avg_rating are computed, never read from a column
	require.Contains(t, q, "e.seats - (SELECT COUNT(*) FROM bookings b WHERE b.event_id = e.id)")
	require.Contains(t, q, "COALESCE((SELECT AVG(r.score)::float8 FROM ratings r WHERE r.event_id = e.id), 0)")
	require.Contains(t, q, "WHERE ("+freeSeatsExpr+") > 0")
}
