package playerdata

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chunidata-backend/lib/playlogstore"
	"chunidata-backend/services/rating"
	"chunidata-backend/services/songdb"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func testService(t *testing.T, store *playlogstore.Store) Service {
	songs := []songdb.SongRecord{
		{
			Id:    "428",
			Title: "Titania",
			Charts: map[songdb.Difficulty]songdb.ChartConstant{
				songdb.Master: {Level: "14", Constant: 14.2},
				songdb.Expert: {Level: "13", Constant: 13.0},
			},
		},
		{
			Id:    "2588",
			Title: "parvorbital",
			Charts: map[songdb.Difficulty]songdb.ChartConstant{
				songdb.Master: {Level: "14+", Constant: 14.7},
			},
		},
		{
			Id:    "900",
			Title: "pending chart",
			Charts: map[songdb.Difficulty]songdb.ChartConstant{
				songdb.Master: {Level: "12+", Deferred: true},
			},
		},
	}
	category := songdb.CategoryData{
		Version: map[string]map[string]songdb.CategoryEntry{
			"VERSE": {
				"2588": {MusicName: "parvorbital"},
			},
		},
	}
	return NewService(ServiceOptions{
		Songs:          songs,
		Category:       category,
		CurrentVersion: "VERSE",
		Store:          store,
	})
}

func TestRatingJoin(t *testing.T) {
	s := testService(t, nil)

	selection := s.Rating([]PlayRecord{
		{Id: "428", Difficulty: "MAS", Score: 1007500},
		{Id: "2588", Difficulty: "MAS", Score: 1000000},
		// unknown song, unresolved chart, unknown difficulty code:
		// none of these may contribute
		{Id: "9999", Difficulty: "MAS", Score: 1010000},
		{Id: "900", Difficulty: "MAS", Score: 1010000},
		{Id: "428", Difficulty: "WE", Score: 1010000},
	})

	require.Len(t, selection.Best, 1)
	require.Len(t, selection.New, 1)
	require.Equal(t, "428", selection.Best[0].SongId)
	require.Equal(t, "Titania", selection.Best[0].Title)
	require.InDelta(t, 16.2, selection.Best[0].Rating, 1e-9)
	require.Equal(t, "2588", selection.New[0].SongId)
	require.InDelta(t, 15.7, selection.New[0].Rating, 1e-9)
}

func TestHandleRating(t *testing.T) {
	s := testService(t, nil)
	mux := http.NewServeMux()
	s.Register(mux)

	body, err := json.Marshal(RatingRequest{
		Records: []PlayRecord{
			{Id: "428", Difficulty: "MAS", Score: 1007500},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/rating", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var selection rating.Selection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &selection))
	require.Len(t, selection.Best, 1)
	require.InDelta(t, 16.2, selection.Rating, 1e-9)
}

func TestHandleRatingRejectsGet(t *testing.T) {
	s := testService(t, nil)
	mux := http.NewServeMux()
	s.Register(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/rating", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleRatingPersistsCapture(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store, err := playlogstore.NewStore(db)
	require.NoError(t, err)

	s := testService(t, &store)
	mux := http.NewServeMux()
	s.Register(mux)

	body, err := json.Marshal(RatingRequest{
		Player: "alice",
		Records: []PlayRecord{
			{Id: "428", Difficulty: "MAS", Score: 1007500, PlayedAt: 1722500000},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/rating", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := store.Query(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "428", got[0].SongId)
	require.Equal(t, 1007500, got[0].Score)
}
