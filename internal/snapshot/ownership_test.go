package snapshot

import (
	"context"
	"testing"

	"github.com/osallek/osa-extractor/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int) game.Date { return game.Date{Year: y, Month: 1, Day: 1} }

func TestAddOwner(t *testing.T) {
	t.Parallel()

	tags := map[string]bool{"SWE": true, "DAN": true, "SCA": true}
	tests := map[string]struct {
		owners []Owner
		date   game.Date
		tag    string

		want []Owner
	}{
		"Empty timeline":           {date: date(1444), tag: "SWE", want: []Owner{{date(1444), "SWE"}}},
		"Appends after last owner": {owners: []Owner{{date(1444), "SWE"}}, date: date(1480), tag: "SCA", want: []Owner{{date(1444), "SWE"}, {date(1480), "SCA"}}},
		"Inserts between owners": {
			owners: []Owner{{date(1444), "SWE"}, {date(1600), "DAN"}},
			date:   date(1480),
			tag:    "SCA",
			want:   []Owner{{date(1444), "SWE"}, {date(1480), "SCA"}, {date(1600), "DAN"}},
		},
		"Replaces same date":  {owners: []Owner{{date(1444), "SWE"}, {date(1480), "DAN"}}, date: date(1480), tag: "SCA", want: []Owner{{date(1444), "SWE"}, {date(1480), "SCA"}}},
		"Skips current owner": {owners: []Owner{{date(1444), "SWE"}}, date: date(1480), tag: "SWE", want: []Owner{{date(1444), "SWE"}}},
		"Skips unknown tag":   {owners: []Owner{{date(1444), "SWE"}}, date: date(1480), tag: "NOR", want: []Owner{{date(1444), "SWE"}}},
		"Merges with next owner": {
			owners: []Owner{{date(1444), "SWE"}, {date(1600), "SCA"}},
			date:   date(1480),
			tag:    "SCA",
			want:   []Owner{{date(1444), "SWE"}, {date(1480), "SCA"}},
		},
		"Replacement merges with previous owner": {
			owners: []Owner{{date(1444), "SWE"}, {date(1480), "DAN"}},
			date:   date(1480),
			tag:    "SWE",
			want:   []Owner{{date(1444), "SWE"}},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p := Province{Owners: tc.owners}
			p.addOwner(tc.date, tc.tag, tags)

			assert.Equal(t, tc.want, p.Owners)
		})
	}
}

func TestReconstructOwners(t *testing.T) {
	t.Parallel()

	tags := map[string]bool{"SWE": true, "DAN": true, "SCA": true, "KAL": true}
	countries := []Country{
		{Tag: "SWE", History: []HistoryEvent{{Date: date(1444)}}},
		{Tag: "KAL", History: []HistoryEvent{{Date: date(1450), ChangedTagFrom: "DAN"}}},
		{Tag: "SCA", History: []HistoryEvent{{Date: date(1480), ChangedTagFrom: "SWE"}, {Date: date(1500), ChangedTagFrom: "KAL"}}},
	}
	provinces := []Province{
		{ID: 1, Owners: []Owner{{date(1444), "SWE"}}},
		{ID: 2, Owners: []Owner{{date(1444), "DAN"}}},
		{ID: 3, Owners: []Owner{{date(1444), "DAN"}}, history: []game.ProvinceEvent{{Date: date(1480), FakeOwner: "SCA"}}},
		{ID: 4},
	}
	var calls int

	err := reconstructOwners(context.Background(), countries, provinces, tags, func(done, total int) {
		calls++
		assert.Equal(t, calls, done, "Progress should count countries")
		assert.Equal(t, len(countries), total, "Progress total should be the number of countries")
	})
	require.NoError(t, err, "reconstructOwners should not return an error")

	assert.Equal(t, 3, calls, "Progress should be reported for every country")
	assert.Equal(t, []Owner{{date(1444), "SWE"}, {date(1480), "SCA"}}, provinces[0].Owners)
	assert.Equal(t, []Owner{{date(1444), "DAN"}, {date(1450), "KAL"}, {date(1500), "SCA"}}, provinces[1].Owners,
		"Changes should chain in date order")
	assert.Equal(t, []Owner{{date(1444), "DAN"}, {date(1450), "KAL"}, {date(1480), "SCA"}}, provinces[2].Owners,
		"Inheritance by decision should be recorded")
	assert.Empty(t, provinces[3].Owners, "Provinces without owners should stay untouched")
}

func TestReconstructOwnersProgressFollowsChanges(t *testing.T) {
	t.Parallel()

	tags := map[string]bool{"SWE": true, "DAN": true, "SCA": true, "KAL": true}
	countries := []Country{
		{Tag: "SCA", History: []HistoryEvent{{Date: date(1500), ChangedTagFrom: "KAL"}}},
		{Tag: "KAL", History: []HistoryEvent{{Date: date(1450), ChangedTagFrom: "DAN"}}},
		{Tag: "SWE", History: []HistoryEvent{{Date: date(1444)}}},
	}
	provinces := []Province{{ID: 1, Owners: []Owner{{date(1444), "DAN"}}}}

	var owners []int
	err := reconstructOwners(context.Background(), countries, provinces, tags, func(int, int) {
		owners = append(owners, len(provinces[0].Owners))
	})
	require.NoError(t, err, "reconstructOwners should not return an error")

	assert.Equal(t, []int{1, 2, 3}, owners,
		"A country should be reported once its changes are applied to the provinces")
}
