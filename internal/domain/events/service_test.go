package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eventforge/server/internal/domain/users"
)

type fakeEventRepo struct {
	events map[string]*Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*Event)}
}

func (f *fakeEventRepo) Create(_ context.Context, params CreateParams) (*Event, error) {
	event := &Event{
		ID:          params.ID,
		Title:       params.Title,
		Description: params.Description,
		UploadDate:  params.UploadDate,
		ExpiryDate:  params.ExpiryDate,
		OrganizerID: params.OrganizerID,
	}
	f.events[event.ID] = event
	return copyEvent(event), nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id string) (*Event, error) {
	if e, ok := f.events[id]; ok {
		return copyEvent(e), nil
	}
	return nil, ErrNotFound
}

func (f *fakeEventRepo) List(_ context.Context) ([]Event, error) {
	result := make([]Event, 0, len(f.events))
	for _, e := range f.events {
		result = append(result, *e)
	}
	return result, nil
}

func (f *fakeEventRepo) ListActive(_ context.Context, today time.Time) ([]Event, error) {
	var result []Event
	for _, e := range f.events {
		if !e.ExpiryDate.Before(today) {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (f *fakeEventRepo) ListByOrganizer(_ context.Context, organizerID string) ([]Event, error) {
	var result []Event
	for _, e := range f.events {
		if e.OrganizerID == organizerID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (f *fakeEventRepo) Update(_ context.Context, params UpdateParams) (*Event, error) {
	e, ok := f.events[params.ID]
	if !ok {
		return nil, ErrNotFound
	}
	e.Title = params.Title
	e.Description = params.Description
	e.ExpiryDate = params.ExpiryDate
	return copyEvent(e), nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.events[id]; !ok {
		return ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func copyEvent(e *Event) *Event {
	clone := *e
	return &clone
}

// fakeUserRepo holds a fixed set of users keyed by username.
type fakeUserRepo struct {
	byUsername map[string]*users.User
}

func newFakeUserRepo(names ...string) *fakeUserRepo {
	repo := &fakeUserRepo{byUsername: make(map[string]*users.User)}
	for i, name := range names {
		repo.byUsername[name] = &users.User{
			ID:       fmt.Sprintf("user-%d", i+1),
			Username: name,
			Email:    name + "@example.com",
			Role:     "admin",
		}
	}
	return repo
}

func (f *fakeUserRepo) Create(context.Context, users.CreateParams) (*users.User, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	for _, u := range f.byUsername {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	if u, ok := f.byUsername[username]; ok {
		return u, nil
	}
	return nil, users.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(context.Context, string) (*users.User, error) {
	return nil, users.ErrNotFound
}

func (f *fakeUserRepo) List(context.Context) ([]users.User, error) { return nil, nil }

func (f *fakeUserRepo) Update(context.Context, users.UpdateParams) (*users.User, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeUserRepo) Delete(context.Context, string) error { return nil }

func newTestService(organizers ...string) (*Service, *fakeEventRepo) {
	repo := newFakeEventRepo()
	svc := NewService(repo, newFakeUserRepo(organizers...), zerolog.Nop())
	return svc, repo
}

func tomorrow() time.Time {
	return Day(time.Now().Add(24 * time.Hour))
}

func yesterday() time.Time {
	return Day(time.Now().Add(-24 * time.Hour))
}

func TestCreateEvent(t *testing.T) {
	svc, _ := newTestService("organizer")

	event, err := svc.CreateEvent(context.Background(), CreateEventParams{
		Title:      "Spring Meetup",
		ExpiryDate: tomorrow(),
	}, "organizer")
	require.NoError(t, err)
	require.NotEmpty(t, event.ID)
	require.Equal(t, "Spring Meetup", event.Title)
	require.Equal(t, Day(time.Now()), event.UploadDate)
	require.Equal(t, "user-1", event.OrganizerID)
}

func TestCreateEvent_Validation(t *testing.T) {
	svc, _ := newTestService("organizer")
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, CreateEventParams{ExpiryDate: tomorrow()}, "organizer")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateEvent(ctx, CreateEventParams{Title: "No expiry"}, "organizer")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateEvent_UnknownOrganizer(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateEvent(context.Background(), CreateEventParams{
		Title:      "Orphan",
		ExpiryDate: tomorrow(),
	}, "nobody")
	require.ErrorIs(t, err, users.ErrNotFound)
}

func TestListActiveEvents_ExcludesExpired(t *testing.T) {
	svc, repo := newTestService("organizer")
	ctx := context.Background()

	active, err := svc.CreateEvent(ctx, CreateEventParams{Title: "Active", ExpiryDate: tomorrow()}, "organizer")
	require.NoError(t, err)

	expired, err := svc.CreateEvent(ctx, CreateEventParams{Title: "Expired", ExpiryDate: tomorrow()}, "organizer")
	require.NoError(t, err)
	repo.events[expired.ID].ExpiryDate = yesterday()

	list, err := svc.ListActiveEvents(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, active.ID, list[0].ID)
}

func TestIsActive_ExpiringTodayIsActive(t *testing.T) {
	event := &Event{ExpiryDate: Day(time.Now())}
	require.True(t, IsActive(event, time.Now()))

	event.ExpiryDate = yesterday()
	require.False(t, IsActive(event, time.Now()))
}

func TestUpdateEvent_OrganizerOnly(t *testing.T) {
	svc, repo := newTestService("organizer", "other")
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, CreateEventParams{Title: "Mine", ExpiryDate: tomorrow()}, "organizer")
	require.NoError(t, err)
	repo.events[event.ID].OrganizerName = "organizer"

	_, err = svc.UpdateEvent(ctx, event.ID, UpdateEventParams{Title: "Stolen"}, "other")
	require.ErrorIs(t, err, ErrNotOrganizer)

	updated, err := svc.UpdateEvent(ctx, event.ID, UpdateEventParams{Title: "Renamed"}, "organizer")
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Title)
}

func TestUpdateEvent_PartialMerge(t *testing.T) {
	svc, repo := newTestService("organizer")
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, CreateEventParams{
		Title:       "Original",
		Description: "The description",
		ExpiryDate:  tomorrow(),
	}, "organizer")
	require.NoError(t, err)
	repo.events[event.ID].OrganizerName = "organizer"

	newExpiry := Day(time.Now().Add(72 * time.Hour))
	updated, err := svc.UpdateEvent(ctx, event.ID, UpdateEventParams{ExpiryDate: &newExpiry}, "organizer")
	require.NoError(t, err)
	require.Equal(t, "Original", updated.Title)
	require.Equal(t, "The description", updated.Description)
	require.Equal(t, newExpiry, updated.ExpiryDate)
}

func TestUpdateEvent_NotFound(t *testing.T) {
	svc, _ := newTestService("organizer")
	_, err := svc.UpdateEvent(context.Background(), "missing", UpdateEventParams{Title: "x"}, "organizer")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteEvent_OrganizerOnly(t *testing.T) {
	svc, repo := newTestService("organizer", "other")
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, CreateEventParams{Title: "Mine", ExpiryDate: tomorrow()}, "organizer")
	require.NoError(t, err)
	repo.events[event.ID].OrganizerName = "organizer"

	require.ErrorIs(t, svc.DeleteEvent(ctx, event.ID, "other"), ErrNotOrganizer)
	require.NoError(t, svc.DeleteEvent(ctx, event.ID, "organizer"))
	require.ErrorIs(t, svc.DeleteEvent(ctx, event.ID, "organizer"), ErrNotFound)
}

func TestListEventsByOrganizer(t *testing.T) {
	svc, _ := newTestService("organizer", "other")
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, CreateEventParams{Title: "A", ExpiryDate: tomorrow()}, "organizer")
	require.NoError(t, err)
	_, err = svc.CreateEvent(ctx, CreateEventParams{Title: "B", ExpiryDate: tomorrow()}, "other")
	require.NoError(t, err)

	mine, err := svc.ListEventsByOrganizer(ctx, "organizer")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "A", mine[0].Title)
}
