package vacancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAnnouncement() *Announcement {
	open := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return &Announcement{
		ID:       "20260201000000_W0001",
		UIC:      "U1",
		PLN:      "101",
		Grade:    12,
		Location: "DC",
		OpenDate: open,
		Expires:  open.AddDate(0, 0, 14),
		LagDays:  30,
		Status:   StatusOpen,
	}
}

func TestSetStatus_Monotone(t *testing.T) {
	t.Parallel()

	a := openAnnouncement()
	require.NoError(t, a.SetStatus(StatusClosed))
	require.NoError(t, a.SetStatus(StatusOffered))
	require.NoError(t, a.SetStatus(StatusDeclined))
	// Declined re-enters ranking.
	require.NoError(t, a.SetStatus(StatusOffered))
	require.NoError(t, a.SetStatus(StatusAccepted))
	require.NoError(t, a.SetStatus(StatusCompleted))

	// Completed is immutable.
	assert.ErrorIs(t, a.SetStatus(StatusOpen), ErrInvalidTransition)
	assert.ErrorIs(t, a.SetStatus(StatusOffered), ErrInvalidTransition)
}

func TestSetStatus_CancelledIsTerminal(t *testing.T) {
	t.Parallel()

	a := openAnnouncement()
	require.NoError(t, a.SetStatus(StatusClosed))
	require.NoError(t, a.SetStatus(StatusCancelled))
	assert.ErrorIs(t, a.SetStatus(StatusOpen), ErrInvalidTransition)
	assert.True(t, a.Settled())
}

func TestAddApplicant(t *testing.T) {
	t.Parallel()

	a := openAnnouncement()
	require.NoError(t, a.AddApplicant("E1"))
	require.NoError(t, a.AddApplicant("E2"))
	assert.Equal(t, []string{"E1", "E2"}, a.Applicants)

	assert.ErrorIs(t, a.AddApplicant("E1"), ErrDuplicateApplicant)

	require.NoError(t, a.SetStatus(StatusClosed))
	assert.ErrorIs(t, a.AddApplicant("E3"), ErrNotOpen)
}

func TestRemoveApplicant_PreservesOrder(t *testing.T) {
	t.Parallel()

	a := openAnnouncement()
	require.NoError(t, a.AddApplicant("E1"))
	require.NoError(t, a.AddApplicant("E2"))
	require.NoError(t, a.AddApplicant("E3"))

	a.RemoveApplicant("E2")
	assert.Equal(t, []string{"E1", "E3"}, a.Applicants)

	a.RemoveApplicant("E9") // unknown UPI is a no-op
	assert.Equal(t, []string{"E1", "E3"}, a.Applicants)
}

func TestExpiredAndRankEligible(t *testing.T) {
	t.Parallel()

	a := openAnnouncement()
	assert.False(t, a.Expired(a.OpenDate.AddDate(0, 0, 14)))
	assert.True(t, a.Expired(a.OpenDate.AddDate(0, 0, 15)))

	// Not rank-eligible while open, even past the lag window.
	late := a.Expires.AddDate(0, 0, a.LagDays+1)
	assert.False(t, a.RankEligible(late))

	require.NoError(t, a.SetStatus(StatusClosed))
	assert.False(t, a.RankEligible(a.Expires.AddDate(0, 0, a.LagDays)))
	assert.True(t, a.RankEligible(late))

	require.NoError(t, a.SetStatus(StatusOffered))
	assert.False(t, a.RankEligible(late))
	require.NoError(t, a.SetStatus(StatusDeclined))
	assert.True(t, a.RankEligible(late))
}
