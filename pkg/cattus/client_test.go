package cattus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cattus-org/cattus-api/types"
)

func envelope(data interface{}) []byte {
	b, _ := json.Marshal(types.NewSuccessResponse(data))
	return b
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, StaticToken("test-token")), srv
}

func TestActivitiesByCatDecodesCurrentShape(t *testing.T) {
	var gotAuth, gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.String()
		w.Write(envelope([]map[string]interface{}{
			{"id": 7, "title": "eat", "catId": 3, "cameraId": 2,
				"startedAt": "2025-04-01T10:00:00Z", "endedAt": "2025-04-01T10:30:00Z"},
		}))
	})

	acts, err := client.ActivitiesByCat(context.Background(), 3, 0, 5)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "/activities/3/cat?offset=0&limit=5", gotPath)
	assert.Equal(t, int64(7), acts[0].ID)
	assert.Equal(t, 30*time.Minute, acts[0].Duration())
	assert.False(t, acts[0].InProgress())
}

func TestActivitiesByCatNormalizesLegacyShape(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(envelope([]map[string]interface{}{
			{
				"_id":       "64ab1f",
				"title":     "eating",
				"startTime": "2025-04-01T09:00:00Z",
				"endTime":   "2025-04-01T09:05:00Z",
				"cat": map[string]interface{}{
					"_id": "64ab20", "petName": "Mia", "petGender": "female", "status": "1",
				},
			},
		}))
	})

	acts, err := client.ActivitiesByCat(context.Background(), 1, 0, 5)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	a := acts[0]
	assert.Equal(t, "eat", string(a.Title))
	assert.Equal(t, 5*time.Minute, a.Duration())
	require.NotNil(t, a.Cat)
	assert.Equal(t, "Mia", a.Cat.Name)
	assert.Equal(t, "female", a.Cat.Sex)
	assert.Equal(t, "alert", string(a.Cat.Status))
	assert.NotZero(t, a.ID)
}

func TestFetchSkipsRecordsWithoutStartTime(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(envelope([]map[string]interface{}{
			{"id": 1, "title": "sleep", "startedAt": "2025-04-01T10:00:00Z"},
			{"id": 2, "title": "sleep"},
		}))
	})

	acts, err := client.ActivitiesByCat(context.Background(), 1, 0, 5)
	require.NoError(t, err)
	assert.Len(t, acts, 1)
	assert.Equal(t, int64(1), acts[0].ID)
}

func TestActivitiesByCameraEnforcesLimit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// The camera endpoint is known to ignore pagination and return
		// everything it has.
		items := make([]map[string]interface{}, 0, 12)
		for i := 0; i < 12; i++ {
			items = append(items, map[string]interface{}{
				"id": i + 1, "title": "drink",
				"startedAt": fmt.Sprintf("2025-04-01T%02d:00:00Z", 10+i%10),
			})
		}
		w.Write(envelope(items))
	})

	acts, err := client.ActivitiesByCamera(context.Background(), 9, 0, 5)
	require.NoError(t, err)
	assert.Len(t, acts, 5)
}

func TestUnauthorizedReturnsTypedError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	acts, err := client.ActivitiesByCat(context.Background(), 1, 0, 5)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotNil(t, acts)
	assert.Empty(t, acts)
}

func TestServerErrorReturnsEmptyNonNilSlice(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	acts, err := client.ActivitiesByCat(context.Background(), 1, 0, 5)
	assert.Error(t, err)
	assert.NotNil(t, acts)
	assert.Empty(t, acts)
}

func TestEnvelopeFailureIsAnError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := json.Marshal(types.NewErrorResponse(types.ErrorCodeInternal, "boom"))
		w.Write(b)
	})

	_, err := client.ActivitiesByCat(context.Background(), 1, 0, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
