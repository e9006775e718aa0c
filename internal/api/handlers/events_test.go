package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eventforge/server/internal/api/middleware"
	"github.com/eventforge/server/internal/auth"
	"github.com/eventforge/server/internal/domain/events"
	"github.com/eventforge/server/internal/domain/ids"
)

type fakeEventService struct {
	createFn func(ctx context.Context, params events.CreateEventParams, callerUsername string) (*events.Event, error)
	getFn    func(ctx context.Context, id string) (*events.Event, error)
	updateFn func(ctx context.Context, id string, params events.UpdateEventParams, callerUsername string) (*events.Event, error)
	deleteFn func(ctx context.Context, id string, callerUsername string) error
	listFn   func(ctx context.Context) ([]events.Event, error)
}

func (f *fakeEventService) CreateEvent(ctx context.Context, params events.CreateEventParams, caller string) (*events.Event, error) {
	return f.createFn(ctx, params, caller)
}

func (f *fakeEventService) ListAllEvents(ctx context.Context) ([]events.Event, error) {
	return f.listFn(ctx)
}

func (f *fakeEventService) ListActiveEvents(ctx context.Context) ([]events.Event, error) {
	return f.listFn(ctx)
}

func (f *fakeEventService) ListEventsByOrganizer(ctx context.Context, _ string) ([]events.Event, error) {
	return f.listFn(ctx)
}

func (f *fakeEventService) GetEvent(ctx context.Context, id string) (*events.Event, error) {
	return f.getFn(ctx, id)
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, id string, params events.UpdateEventParams, caller string) (*events.Event, error) {
	return f.updateFn(ctx, id, params, caller)
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, id string, caller string) error {
	return f.deleteFn(ctx, id, caller)
}

// withCaller runs the handler behind the auth middleware's context so
// caller(r) resolves to the given username.
func withCaller(r *http.Request, username string) *http.Request {
	manager := auth.NewJWTManager("test-secret", time.Hour, "eventforge")
	token, _ := manager.Generate(username, auth.RoleAdmin)
	r.Header.Set("Authorization", "Bearer "+token)

	var out *http.Request
	middleware.Authenticate(manager, "test")(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		out = req
	})).ServeHTTP(httptest.NewRecorder(), r)
	return out
}

func TestEventsHandler_Create(t *testing.T) {
	var gotCaller string
	handler := NewEventsHandler(&fakeEventService{
		createFn: func(_ context.Context, params events.CreateEventParams, caller string) (*events.Event, error) {
			gotCaller = caller
			return &events.Event{
				ID:            "01HEVT",
				Title:         params.Title,
				Description:   params.Description,
				UploadDate:    events.Day(time.Now()),
				ExpiryDate:    params.ExpiryDate,
				OrganizerName: caller,
			}, nil
		},
	}, "test")

	body := `{"title":"Meetup","description":"Monthly","expiry_date":"2031-05-01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
	req = withCaller(req, "organizer")
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "organizer", gotCaller)

	var resp EventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Meetup", resp.Title)
	require.Equal(t, "2031-05-01", resp.ExpiryDate)
	require.True(t, resp.Active)
}

func TestEventsHandler_CreateBadDate(t *testing.T) {
	handler := NewEventsHandler(&fakeEventService{}, "test")

	body := `{"title":"Meetup","expiry_date":"01/05/2031"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventsHandler_GetNotFound(t *testing.T) {
	handler := NewEventsHandler(&fakeEventService{
		getFn: func(context.Context, string) (*events.Event, error) {
			return nil, events.ErrNotFound
		},
	}, "test")

	id := ids.NewULID()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventsHandler_GetMalformedID(t *testing.T) {
	handler := NewEventsHandler(&fakeEventService{
		getFn: func(context.Context, string) (*events.Event, error) {
			t.Fatal("service must not be called for a malformed event id")
			return nil, nil
		},
	}, "test")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/not-a-ulid", nil)
	req.SetPathValue("id", "not-a-ulid")
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestEventsHandler_UpdateForbidden(t *testing.T) {
	handler := NewEventsHandler(&fakeEventService{
		updateFn: func(context.Context, string, events.UpdateEventParams, string) (*events.Event, error) {
			return nil, events.ErrNotOrganizer
		},
	}, "test")

	id := ids.NewULID()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/events/"+id, strings.NewReader(`{"title":"New"}`))
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEventsHandler_UpdatePassesPartialParams(t *testing.T) {
	id := ids.NewULID()
	var got events.UpdateEventParams
	handler := NewEventsHandler(&fakeEventService{
		updateFn: func(_ context.Context, id string, params events.UpdateEventParams, _ string) (*events.Event, error) {
			got = params
			return &events.Event{ID: id, Title: "Renamed"}, nil
		},
	}, "test")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/events/"+id, strings.NewReader(`{"title":"Renamed"}`))
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Renamed", got.Title)
	require.Empty(t, got.Description)
	require.Nil(t, got.ExpiryDate)
}

func TestEventsHandler_DeleteConflict(t *testing.T) {
	handler := NewEventsHandler(&fakeEventService{
		deleteFn: func(context.Context, string, string) error {
			return events.ErrReferenced
		},
	}, "test")

	id := ids.NewULID()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/events/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestEventsHandler_List(t *testing.T) {
	handler := NewEventsHandler(&fakeEventService{
		listFn: func(context.Context) ([]events.Event, error) {
			return []events.Event{
				{ID: "01HEVT1", Title: "First", ExpiryDate: events.Day(time.Now().Add(24 * time.Hour))},
				{ID: "01HEVT2", Title: "Second", ExpiryDate: events.Day(time.Now().Add(-24 * time.Hour))},
			}, nil
		},
	}, "test")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []EventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	require.True(t, resp[0].Active)
	require.False(t, resp[1].Active)
}
