package commands

import (
	"database/sql"
	"log/slog"
	"net/http"

	"chunidata-backend/lib/playlogstore"

	"github.com/spf13/cobra"

	_ "modernc.org/sqlite"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the player rating endpoint over the finalized song database.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			fatal("failed to read config", err)
		}

		db, err := sql.Open("sqlite", cfg.Serve.DbPath)
		if err != nil {
			fatal("failed to open play record db", err)
		}
		defer db.Close()

		store, err := playlogstore.NewStore(db)
		if err != nil {
			fatal("failed to initialize play record store", err)
		}

		service, err := loadRatingService(cfg.Serve, &store)
		if err != nil {
			fatal("failed to load song database", err)
		}

		mux := http.NewServeMux()
		service.Register(mux)

		slog.Info("listening", "addr", cfg.Serve.Addr)
		err = http.ListenAndServe(cfg.Serve.Addr, mux)
		if err != nil {
			fatal("server stopped", err)
		}
	},
}
