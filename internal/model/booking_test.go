package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeno-labs/museum-companion/internal/model"
)

func TestValidAgeGroup(t *testing.T) {
	require.True(t, model.ValidAgeGroup(model.AgeGroupChild))
	require.True(t, model.ValidAgeGroup(model.AgeGroupAdult))
	require.True(t, model.ValidAgeGroup(model.AgeGroupSenior))

	require.False(t, model.ValidAgeGroup(""))
	require.False(t, model.ValidAgeGroup("infant"))
	require.False(t, model.ValidAgeGroup("Adult")) // case sensitive
}

func TestBookingExpired(t *testing.T) {
	until := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	b := model.Booking{ValidUntil: until}

	require.False(t, b.Expired(until.Add(-time.Minute)))
	// The boundary instant is still valid.
	require.False(t, b.Expired(until))
	require.True(t, b.Expired(until.Add(time.Second)))
}
