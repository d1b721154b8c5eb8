package venue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePreferences struct {
	venues map[int64]string
	err    error
}

func (f *fakePreferences) GetCurrentVenue(_ context.Context, userID int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.venues[userID], nil
}

func (f *fakePreferences) SetCurrentVenue(_ context.Context, userID int64, venue string) error {
	f.venues[userID] = venue
	return nil
}

func TestResolve(t *testing.T) {
	prefs := &fakePreferences{venues: map[int64]string{1: "Royal Casino"}}
	r := NewResolver(prefs)
	ctx := context.Background()

	res, err := r.Resolve(ctx, 1, "Other Hall")
	require.NoError(t, err)
	assert.Equal(t, Resolution{Venue: "Royal Casino", Overridden: true}, res)

	res, err = r.Resolve(ctx, 2, "Other Hall")
	require.NoError(t, err)
	assert.Equal(t, Resolution{Venue: "Other Hall", Overridden: false}, res)

	res, err = r.Resolve(ctx, 2, "")
	require.NoError(t, err)
	assert.Equal(t, Resolution{Venue: NotSpecified, Overridden: false}, res)
}

func TestResolve_SameVenueIsNotOverride(t *testing.T) {
	res := Decide("Royal Casino", " Royal Casino ")
	assert.Equal(t, Resolution{Venue: "Royal Casino"}, res)
}

func TestResolve_EmptyAndBlankTreatedAlike(t *testing.T) {
	assert.Equal(t, Decide("Royal Casino", ""), Decide("Royal Casino", "   "))
	assert.Equal(t, Decide("", "Hall"), Decide("  ", "Hall"))
	assert.False(t, Decide("Royal Casino", "").Overridden)
}

func TestResolve_StoreError(t *testing.T) {
	r := NewResolver(&fakePreferences{err: errors.New("db down")})
	_, err := r.Resolve(context.Background(), 1, "Hall")
	assert.ErrorContains(t, err, "db down")
}

func TestAnnotation(t *testing.T) {
	assert.Empty(t, Annotation(Resolution{Venue: "Hall"}, "Hall"))
	assert.Contains(t, Annotation(Decide("Royal Casino", "Other Hall"), "Other Hall"), "Other Hall")
}
