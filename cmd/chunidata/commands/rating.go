package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"chunidata-backend/lib/playlogstore"
	"chunidata-backend/services/playerdata"
	"chunidata-backend/services/rating"
	"chunidata-backend/services/songdb"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(ratingCmd)
}

var ratingCmd = &cobra.Command{
	Use:   "rating <path/to/capture.json>",
	Short: "Computes the rating selection for a captured play record file.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			fatal("failed to read config", err)
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			fatal("failed to read capture file", err)
		}
		var records []playerdata.PlayRecord
		err = json.Unmarshal(raw, &records)
		if err != nil {
			fatal("failed to parse capture file", err)
		}

		service, err := loadRatingService(cfg.Serve, nil)
		if err != nil {
			fatal("failed to load song database", err)
		}
		selection := service.Rating(records)

		renderFrame("BEST", selection.Best)
		renderFrame("NEW", selection.New)
		fmt.Printf("rating: %.2f\n", selection.Rating)
	},
}

func loadRatingService(cfg ServeConfig, store *playlogstore.Store) (playerdata.Service, error) {
	songs, err := songdb.LoadSongDatabase(cfg.SongDbPath)
	if err != nil {
		return playerdata.Service{}, err
	}
	category, err := songdb.LoadCategoryData(cfg.CategoryPath)
	if err != nil {
		return playerdata.Service{}, err
	}
	return playerdata.NewService(playerdata.ServiceOptions{
		Songs:          songs,
		Category:       category,
		CurrentVersion: cfg.CurrentVersion,
		Store:          store,
	}), nil
}

func renderFrame(name string, entries []rating.Entry) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Title", "Diff", "Const", "Score", "Rating"})
	for i, e := range entries {
		t.AppendRow(table.Row{
			i + 1,
			e.Title,
			e.Difficulty.Code(),
			fmt.Sprintf("%.1f", e.Constant),
			e.Score,
			fmt.Sprintf("%.2f", e.Rating),
		})
	}
	fmt.Println(name)
	t.Render()
}
