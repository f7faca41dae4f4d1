package ai_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeno-labs/museum-companion/internal/ai"
	"github.com/zeno-labs/museum-companion/internal/model"
)

func TestParseBookTicketArgs(t *testing.T) {
	raw := `{"museumId":"42","attendees":[{"name":"Ada","ageGroup":"adult"},{"name":"Sam","ageGroup":"child"}]}`
	museumID, attendees, err := ai.ParseBookTicketArgs(raw)
	require.NoError(t, err)
	require.Equal(t, uint64(42), museumID)
	require.Equal(t, []model.Attendee{
		{Name: "Ada", AgeGroup: model.AgeGroupAdult},
		{Name: "Sam", AgeGroup: model.AgeGroupChild},
	}, attendees)
}

func TestParseBookTicketArgsTrimsNames(t *testing.T) {
	raw := `{"museumId":" 7 ","attendees":[{"name":"  Ada  ","ageGroup":"senior"}]}`
	museumID, attendees, err := ai.ParseBookTicketArgs(raw)
	require.NoError(t, err)
	require.Equal(t, uint64(7), museumID)
	require.Equal(t, "Ada", attendees[0].Name)
}

func TestParseBookTicketArgsErrors(t *testing.T) {
	cases := map[string]string{
		"malformed json":   `{"museumId":`,
		"missing museum":   `{"attendees":[{"name":"Ada","ageGroup":"adult"}]}`,
		"non-numeric id":   `{"museumId":"abc","attendees":[{"name":"Ada","ageGroup":"adult"}]}`,
		"zero id":          `{"museumId":"0","attendees":[{"name":"Ada","ageGroup":"adult"}]}`,
		"no attendees":     `{"museumId":"42","attendees":[]}`,
		"blank name":       `{"museumId":"42","attendees":[{"name":"   ","ageGroup":"adult"}]}`,
		"unknown ageGroup": `{"museumId":"42","attendees":[{"name":"Ada","ageGroup":"infant"}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ai.ParseBookTicketArgs(raw)
			require.Error(t, err)
		})
	}
}
