package commands

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"chunidata-backend/lib/playlogstore"
	"chunidata-backend/lib/scrapers/chuninet"
	"chunidata-backend/services/songdb"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	_ "modernc.org/sqlite"
)

var pushPlayer *string

func init() {
	pushPlayer = playlogCmd.Flags().String("push", "", "Also store the scraped records under this player name.")
	rootCmd.AddCommand(playlogCmd)
}

var playlogCmd = &cobra.Command{
	Use:   "playlog [--push <player>]",
	Short: "Scrapes the portal's recent play records and prints them.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			fatal("failed to read config", err)
		}

		client, err := chuninet.NewClient(cmd.Context(), chuninet.ClientOptions{
			BaseUrl:  cfg.Pipeline.BaseUrl,
			SegaId:   cfg.Pipeline.SegaId,
			Password: cfg.Pipeline.Password,
			DelayMin: time.Duration(cfg.Pipeline.DelayMinMs) * time.Millisecond,
			DelayMax: time.Duration(cfg.Pipeline.DelayMaxMs) * time.Millisecond,
			DumpDir:  cfg.Pipeline.DumpDir,
		})
		if err != nil {
			fatal("failed to initialize portal client", err)
		}
		err = client.Login(cmd.Context())
		if err != nil {
			fatal("failed to login", err)
		}

		info, err := client.FetchPlayerInfo(cmd.Context())
		if err != nil {
			fatal("failed to fetch player info", err)
		}
		records, err := client.FetchPlaylog(cmd.Context())
		if err != nil {
			fatal("failed to fetch playlog", err)
		}

		fmt.Printf("%s (rating %.2f)\n", info.Name, info.Rating)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Played", "Title", "Diff", "Score", "New"})
		for _, r := range records {
			diff := "?"
			if d, ok := songdb.DifficultyFromTag(r.Difficulty); ok {
				diff = d.Code()
			}
			t.AppendRow(table.Row{
				r.PlayedAt.Format("01/02 15:04"),
				r.Title,
				diff,
				r.Score,
				r.IsNewRecord,
			})
		}
		t.Render()

		if *pushPlayer != "" {
			err = pushPlaylog(cmd, cfg.Serve.DbPath, *pushPlayer, records)
			if err != nil {
				fatal("failed to store playlog", err)
			}
		}
	},
}

func pushPlaylog(cmd *cobra.Command, dbPath, player string, records []chuninet.PlayRecord) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := playlogstore.NewStore(db)
	if err != nil {
		return err
	}

	rows := make([]playlogstore.Record, 0, len(records))
	for _, r := range records {
		d, ok := songdb.DifficultyFromTag(r.Difficulty)
		if !ok {
			continue
		}
		rows = append(rows, playlogstore.Record{
			SongId:      r.MusicId,
			Difficulty:  d.Code(),
			Score:       r.Score,
			ClearLamp:   r.ClearLamp,
			ComboLamp:   r.ComboLamp,
			ChainLamp:   r.ChainLamp,
			IsNewRecord: r.IsNewRecord,
			PlayedAt:    r.PlayedAt,
		})
	}
	return store.Push(cmd.Context(), player, rows)
}
