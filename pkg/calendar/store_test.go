package calendar

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDateTime(t *testing.T, value string) civil.DateTime {
	t.Helper()
	dt, err := ParseDateTime(value)
	require.NoError(t, err)
	return dt
}

func mustDate(t *testing.T, value string) civil.Date {
	t.Helper()
	d, err := ParseDate(value)
	require.NoError(t, err)
	return d
}

func createEvent(t *testing.T, s *EventStore, subject, start, end string) {
	t.Helper()
	req := CreateRequest{Subject: subject, Start: mustDateTime(t, start)}
	if end != "" {
		req.End = mustDateTime(t, end)
	}
	_, err := s.CreateEvent(req)
	require.NoError(t, err)
}

func subjects(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Subject)
	}
	return out
}

func TestEventStore_CreateEvent_ThenFind(t *testing.T) {
	s := NewEventStore()
	req := CreateRequest{
		Subject:     "Design review",
		Description: "Quarterly",
		Start:       mustDateTime(t, "2024-03-20T14:30"),
		End:         mustDateTime(t, "2024-03-20T15:30"),
		Location:    Physical,
		Status:      Public,
	}

	created, err := s.CreateEvent(req)
	require.NoError(t, err)
	require.Len(t, created, 1)

	found, err := s.Find("Design review", req.Start)
	require.NoError(t, err)
	assert.Equal(t, req.End, found.End)
	assert.Equal(t, "Quarterly", found.Description)
	assert.Equal(t, Physical, found.Location)
	assert.Equal(t, Public, found.Status)
}

func TestEventStore_CreateEvent_Duplicate(t *testing.T) {
	s := NewEventStore()
	createEvent(t, s, "Meeting", "2024-03-20T10:00", "2024-03-20T11:00")

	_, err := s.CreateEvent(CreateRequest{
		Subject: "Meeting",
		Start:   mustDateTime(t, "2024-03-20T10:00"),
		End:     mustDateTime(t, "2024-03-20T11:00"),
	})

	require.ErrorIs(t, err, ErrDuplicateEvent)
	assert.Equal(t, 1, s.Len())
}

func TestEventStore_CreateEvent_AllDay(t *testing.T) {
	s := NewEventStore()
	createEvent(t, s, "Holiday", "2024-03-20T14:30", "")

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, mustDateTime(t, "2024-03-20T08:00"), events[0].Start)
	assert.Equal(t, mustDateTime(t, "2024-03-20T17:00"), events[0].End)
}

func TestEventStore_CreateEvent_RepeatCount(t *testing.T) {
	s := NewEventStore()
	created, err := s.CreateEvent(CreateRequest{
		Subject:     "Standup",
		Start:       mustDateTime(t, "2024-03-20T09:00"),
		End:         mustDateTime(t, "2024-03-20T09:15"),
		Location:    Online,
		Status:      Private,
		RepeatCount: 5,
	})
	require.NoError(t, err)
	require.Len(t, created, 6)

	events := s.Events()
	require.Len(t, events, 6)
	first := mustDate(t, "2024-03-20")
	for i, e := range events {
		assert.Equal(t, "Standup", e.Subject)
		assert.Equal(t, Online, e.Location)
		assert.Equal(t, Private, e.Status)
		assert.Equal(t, first.AddDays(i), e.Start.Date)
		assert.Equal(t, civil.Time{Hour: 9}, e.Start.Time)
		assert.Equal(t, civil.Time{Hour: 9, Minute: 15}, e.End.Time)
	}
}

func TestEventStore_CreateEvent_WeekdayRecurrence(t *testing.T) {
	s := NewEventStore()
	_, err := s.CreateEvent(CreateRequest{
		Subject:     "Gym",
		Start:       mustDateTime(t, "2024-04-10T18:00"),
		End:         mustDateTime(t, "2024-04-10T19:00"),
		Weekdays:    []string{"M", "W", "F"},
		RepeatCount: 10,
	})
	require.NoError(t, err)

	events := s.Events()
	require.Len(t, events, 11)
	for _, e := range events {
		day := e.Start.Date.In(time.UTC).Weekday()
		assert.Contains(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, day, "event on %s", e.Start.Date)
		assert.Equal(t, civil.Time{Hour: 18}, e.Start.Time)
	}
	assert.Equal(t, mustDate(t, "2024-04-12"), events[1].Start.Date)
	assert.Equal(t, mustDate(t, "2024-05-03"), events[10].Start.Date)
}

func TestEventStore_CreateEvent_AllDayRecurrence(t *testing.T) {
	s := NewEventStore()
	_, err := s.CreateEvent(CreateRequest{
		Subject:     "Team Meeting",
		Start:       mustDateTime(t, "2024-03-20T14:30"),
		RepeatCount: 2,
	})
	require.NoError(t, err)

	events := s.Events()
	require.Len(t, events, 3)
	for _, e := range events {
		assert.Equal(t, allDayStart, e.Start.Time)
		assert.Equal(t, allDayEnd, e.End.Time)
	}
}

func TestEventStore_CreateEvent_OvernightRecurrence(t *testing.T) {
	s := NewEventStore()
	_, err := s.CreateEvent(CreateRequest{
		Subject:     "Night shift",
		Start:       mustDateTime(t, "2024-03-20T22:00"),
		End:         mustDateTime(t, "2024-03-21T06:00"),
		RepeatCount: 2,
	})
	require.NoError(t, err)

	events := s.Events()
	require.Len(t, events, 3)
	assert.Equal(t, mustDateTime(t, "2024-03-22T22:00"), events[2].Start)
	assert.Equal(t, mustDateTime(t, "2024-03-23T06:00"), events[2].End)
}

func TestEventStore_CreateEvent_InvalidWeekdayLeavesStoreUntouched(t *testing.T) {
	s := NewEventStore()
	createEvent(t, s, "Existing", "2024-03-19T10:00", "2024-03-19T11:00")

	_, err := s.CreateEvent(CreateRequest{
		Subject:     "Gym",
		Start:       mustDateTime(t, "2024-03-20T18:00"),
		End:         mustDateTime(t, "2024-03-20T19:00"),
		Weekdays:    []string{"M", "X"},
		RepeatCount: 3,
	})

	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "invalid weekday")
	assert.Equal(t, []string{"Existing"}, subjects(s.Events()))
}

func TestEventStore_CreateEvent_NegativeRepeatCount(t *testing.T) {
	s := NewEventStore()
	_, err := s.CreateEvent(CreateRequest{
		Subject:     "Gym",
		Start:       mustDateTime(t, "2024-03-20T18:00"),
		RepeatCount: -1,
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, s.Len())
}

func TestEventStore_Ordering(t *testing.T) {
	testCases := []struct {
		name   string
		events [][3]string
		want   []string
	}{
		{
			name: "Single event then earlier time same day",
			events: [][3]string{
				{"B", "2024-03-20T10:00", "2024-03-20T11:00"},
				{"A", "2024-03-20T09:00", "2024-03-20T09:30"},
			},
			want: []string{"A", "B"},
		},
		{
			name: "Single event then earlier day",
			events: [][3]string{
				{"B", "2024-03-21T10:00", "2024-03-21T11:00"},
				{"A", "2024-03-20T15:00", "2024-03-20T16:00"},
			},
			want: []string{"A", "B"},
		},
		{
			name: "Later events append",
			events: [][3]string{
				{"A", "2024-03-20T10:00", "2024-03-20T11:00"},
				{"B", "2024-03-20T12:00", "2024-03-20T13:00"},
				{"C", "2024-03-21T08:00", "2024-03-21T09:00"},
			},
			want: []string{"A", "B", "C"},
		},
		{
			name: "Earlier time same day as last scans backwards",
			events: [][3]string{
				{"B", "2024-03-20T10:00", "2024-03-20T11:00"},
				{"C", "2024-03-20T12:00", "2024-03-20T13:00"},
				{"A", "2024-03-20T09:00", "2024-03-20T09:30"},
			},
			want: []string{"A", "B", "C"},
		},
		{
			name: "Earlier day inserted in the middle",
			events: [][3]string{
				{"A", "2024-03-18T10:00", "2024-03-18T11:00"},
				{"C", "2024-03-22T10:00", "2024-03-22T11:00"},
				{"B", "2024-03-20T10:00", "2024-03-20T11:00"},
			},
			want: []string{"A", "B", "C"},
		},
		{
			name: "Earliest goes to the front",
			events: [][3]string{
				{"B", "2024-03-20T10:00", "2024-03-20T11:00"},
				{"C", "2024-03-21T10:00", "2024-03-21T11:00"},
				{"A", "2024-03-01T10:00", "2024-03-01T11:00"},
			},
			want: []string{"A", "B", "C"},
		},
		{
			name: "Same start keeps insertion order",
			events: [][3]string{
				{"First", "2024-03-20T10:00", "2024-03-20T11:00"},
				{"Later", "2024-03-21T10:00", "2024-03-21T11:00"},
				{"Second", "2024-03-20T10:00", "2024-03-20T10:30"},
			},
			want: []string{"First", "Second", "Later"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewEventStore()
			for _, e := range tc.events {
				createEvent(t, s, e[0], e[1], e[2])
			}
			assert.Equal(t, tc.want, subjects(s.Events()))
		})
	}
}

func TestEventStore_EditEvent(t *testing.T) {
	start := "2024-03-20T10:00"

	testCases := []struct {
		name     string
		property string
		value    string
		check    func(t *testing.T, e Event)
		wantErr  error
	}{
		{
			name:     "Subject",
			property: "subject",
			value:    "Renamed",
			check:    func(t *testing.T, e Event) { assert.Equal(t, "Renamed", e.Subject) },
		},
		{
			name:     "Start",
			property: "START",
			value:    "2024-03-20T09:00",
			check: func(t *testing.T, e Event) {
				assert.Equal(t, mustDateTime(t, "2024-03-20T09:00"), e.Start)
				assert.Equal(t, mustDateTime(t, "2024-03-20T11:00"), e.End)
			},
		},
		{
			name:     "End",
			property: "end",
			value:    "2024-03-20T12:00",
			check:    func(t *testing.T, e Event) { assert.Equal(t, mustDateTime(t, "2024-03-20T12:00"), e.End) },
		},
		{
			name:     "Description",
			property: "Description",
			value:    "Bring slides",
			check:    func(t *testing.T, e Event) { assert.Equal(t, "Bring slides", e.Description) },
		},
		{
			name:     "Location",
			property: "location",
			value:    "online",
			check:    func(t *testing.T, e Event) { assert.Equal(t, Online, e.Location) },
		},
		{
			name:     "Status",
			property: "status",
			value:    "private",
			check:    func(t *testing.T, e Event) { assert.Equal(t, Private, e.Status) },
		},
		{
			name:     "Invalid property",
			property: "color",
			value:    "red",
			wantErr:  ErrValidation,
		},
		{
			name:     "Start after end",
			property: "start",
			value:    "2024-03-20T11:30",
			wantErr:  ErrValidation,
		},
		{
			name:     "End before start",
			property: "end",
			value:    "2024-03-20T09:30",
			wantErr:  ErrValidation,
		},
		{
			name:     "Invalid location",
			property: "location",
			value:    "moon",
			wantErr:  ErrValidation,
		},
		{
			name:     "Invalid status",
			property: "status",
			value:    "secret",
			wantErr:  ErrValidation,
		},
		{
			name:     "Empty subject",
			property: "subject",
			value:    "",
			wantErr:  ErrValidation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewEventStore()
			createEvent(t, s, "Planning", "2024-03-19T10:00", "2024-03-19T11:00")
			createEvent(t, s, "Meeting", start, "2024-03-20T11:00")
			before := s.Events()

			updated, err := s.EditEvent(tc.property, "Meeting", mustDateTime(t, start), tc.value)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, before, s.Events())
				return
			}
			require.NoError(t, err)
			tc.check(t, updated)

			events := s.Events()
			require.Len(t, events, 2)
			assert.Equal(t, updated, events[1], "edited event keeps its position")
			assert.Equal(t, before[0], events[0])
		})
	}
}

func TestEventStore_EditEvent_NotFound(t *testing.T) {
	s := NewEventStore()
	createEvent(t, s, "Meeting", "2024-03-20T10:00", "2024-03-20T11:00")

	_, err := s.EditEvent("subject", "Meeting", mustDateTime(t, "2024-03-20T10:01"), "x")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.EditEvent("subject", "Other", mustDateTime(t, "2024-03-20T10:00"), "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventStore_EditScopes(t *testing.T) {
	setup := func(t *testing.T) *EventStore {
		s := NewEventStore()
		createEvent(t, s, "X", "2024-03-20T10:00", "2024-03-20T11:00")
		createEvent(t, s, "Y", "2024-03-21T10:00", "2024-03-21T11:00")
		createEvent(t, s, "X", "2024-03-22T10:00", "2024-03-22T11:00")
		return s
	}
	statuses := func(s *EventStore) []Status {
		var out []Status
		for _, e := range s.Events() {
			out = append(out, e.Status)
		}
		return out
	}

	t.Run("EditEvents from the earliest start updates the whole subject", func(t *testing.T) {
		s := setup(t)
		updated, err := s.EditEvents("status", "X", mustDateTime(t, "2024-03-20T10:00"), "private")
		require.NoError(t, err)
		assert.Len(t, updated, 2)
		assert.Equal(t, []Status{Private, NoStatus, Private}, statuses(s))
	})

	t.Run("EditEvents skips events before the start", func(t *testing.T) {
		s := setup(t)
		updated, err := s.EditEvents("status", "X", mustDateTime(t, "2024-03-21T00:00"), "private")
		require.NoError(t, err)
		assert.Len(t, updated, 1)
		assert.Equal(t, []Status{NoStatus, NoStatus, Private}, statuses(s))
	})

	t.Run("EditEvent only touches the exact start", func(t *testing.T) {
		s := setup(t)
		_, err := s.EditEvent("status", "X", mustDateTime(t, "2024-03-20T10:00"), "private")
		require.NoError(t, err)
		assert.Equal(t, []Status{Private, NoStatus, NoStatus}, statuses(s))
	})

	t.Run("EditSeries ignores dates", func(t *testing.T) {
		s := setup(t)
		updated, err := s.EditSeries("location", "X", "physical")
		require.NoError(t, err)
		assert.Len(t, updated, 2)
		for _, e := range s.Events() {
			if e.Subject == "X" {
				assert.Equal(t, Physical, e.Location)
			} else {
				assert.Equal(t, NoLocation, e.Location)
			}
		}
	})

	t.Run("EditEvents with no match", func(t *testing.T) {
		s := setup(t)
		_, err := s.EditEvents("status", "X", mustDateTime(t, "2024-04-01T00:00"), "private")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("EditSeries with unknown subject", func(t *testing.T) {
		s := setup(t)
		_, err := s.EditSeries("status", "Z", "private")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("EditSeries with invalid property", func(t *testing.T) {
		s := setup(t)
		_, err := s.EditSeries("colour", "X", "red")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestEventStore_EditSeries_AllOrNothing(t *testing.T) {
	s := NewEventStore()
	createEvent(t, s, "X", "2024-03-20T10:00", "2024-03-25T11:00")
	createEvent(t, s, "X", "2024-03-22T10:00", "2024-03-22T11:00")
	before := s.Events()

	// valid for the first event, after the end of the second one
	_, err := s.EditSeries("start", "X", "2024-03-23T09:00")

	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, before, s.Events())
}

func TestEventStore_Paste(t *testing.T) {
	s := NewEventStore()
	createEvent(t, s, "B", "2024-03-20T10:00", "2024-03-20T11:00")

	existing, err := s.Find("B", mustDateTime(t, "2024-03-20T10:00"))
	require.NoError(t, err)
	earlier, err := NewEvent(EventParams{Subject: "A", Start: mustDateTime(t, "2024-03-19T10:00"), End: mustDateTime(t, "2024-03-19T11:00")})
	require.NoError(t, err)
	later, err := NewEvent(EventParams{Subject: "C", Start: mustDateTime(t, "2024-03-21T10:00"), End: mustDateTime(t, "2024-03-21T11:00")})
	require.NoError(t, err)

	inserted := s.Paste([]Event{later, existing, earlier})

	assert.Len(t, inserted, 2)
	assert.Equal(t, []string{"A", "B", "C"}, subjects(s.Events()))

	inserted = s.Paste([]Event{later, earlier})
	assert.Empty(t, inserted)
	assert.Equal(t, 3, s.Len())
}
