// Package playerdata serves the dashboard-facing rating endpoint: it
// takes a captured play record collection and answers with the derived
// rating selection.
package playerdata

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"chunidata-backend/lib/playlogstore"
	"chunidata-backend/services/rating"
	"chunidata-backend/services/songdb"
)

// PlayRecord is the capture shape the external bookmarklet produces.
type PlayRecord struct {
	Id          string `json:"id"`
	Difficulty  string `json:"difficulty"`
	Score       int    `json:"score"`
	ClearLamp   int    `json:"clearLamp"`
	ComboLamp   int    `json:"comboLamp"`
	ChainLamp   int    `json:"chainLamp"`
	IsNewRecord bool   `json:"isNewRecord"`
	PlayedAt    int64  `json:"playedAt,omitempty"`
}

type RatingRequest struct {
	// optional, set when the capture should also be persisted
	Player  string       `json:"player,omitempty"`
	Records []PlayRecord `json:"records"`
}

type Service struct {
	constants map[string]map[songdb.Difficulty]float64
	titles    map[string]string
	newSongs  map[string]bool

	// nil disables capture persistence
	store *playlogstore.Store
}

type ServiceOptions struct {
	Songs    []songdb.SongRecord
	Category songdb.CategoryData
	// version category label whose songs count toward the "new" frame
	CurrentVersion string
	Store          *playlogstore.Store
}

func NewService(opts ServiceOptions) Service {
	s := Service{
		constants: map[string]map[songdb.Difficulty]float64{},
		titles:    map[string]string{},
		newSongs:  map[string]bool{},
		store:     opts.Store,
	}

	for _, song := range opts.Songs {
		charts := map[songdb.Difficulty]float64{}
		for difficulty, chart := range song.Charts {
			if chart.Resolved() {
				charts[difficulty] = chart.Constant
			}
		}
		s.constants[song.Id] = charts
		s.titles[song.Id] = song.Title
	}

	for id := range opts.Category.Version[opts.CurrentVersion] {
		s.newSongs[id] = true
	}

	return s
}

// Rating joins the capture against the song database and runs the
// selection. records for unknown songs or unresolved charts contribute
// nothing, they are not catalogue-eligible.
func (s Service) Rating(records []PlayRecord) rating.Selection {
	var perfs []rating.Performance
	for _, r := range records {
		difficulty, ok := songdb.DifficultyFromCode(r.Difficulty)
		if !ok {
			continue
		}
		constant, ok := s.constants[r.Id][difficulty]
		if !ok {
			continue
		}
		perfs = append(perfs, rating.Performance{
			SongId:     r.Id,
			Title:      s.titles[r.Id],
			Difficulty: difficulty,
			Constant:   constant,
			Score:      r.Score,
		})
	}

	return rating.Select(perfs, func(songId string) bool {
		return s.newSongs[songId]
	})
}

func (s Service) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/rating", s.handleRating)
}

func (s Service) handleRating(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RatingRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	selection := s.Rating(req.Records)

	if req.Player != "" && s.store != nil {
		err = s.persist(r, req)
		if err != nil {
			// the capture is still rated, persistence is best effort
			slog.ErrorContext(r.Context(), "failed to persist capture", "player", req.Player, "err", err)
		}
	}

	w.Header().Set("content-type", "application/json")
	err = json.NewEncoder(w).Encode(selection)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to write rating response", "err", err)
	}
}

func (s Service) persist(r *http.Request, req RatingRequest) error {
	records := make([]playlogstore.Record, len(req.Records))
	for i, rec := range req.Records {
		records[i] = playlogstore.Record{
			SongId:      rec.Id,
			Difficulty:  rec.Difficulty,
			Score:       rec.Score,
			ClearLamp:   rec.ClearLamp,
			ComboLamp:   rec.ComboLamp,
			ChainLamp:   rec.ChainLamp,
			IsNewRecord: rec.IsNewRecord,
			PlayedAt:    time.Unix(rec.PlayedAt, 0),
		}
	}
	return s.store.Push(r.Context(), req.Player, records)
}
