package commands

import (
	"context"
	"fmt"
	"os"

	"chunidata-backend/lib/configutil"
	"chunidata-backend/services/pipeline"

	"github.com/spf13/cobra"
)

// Config is the top-level chunidata.json5 shape.
type Config struct {
	Pipeline pipeline.Config `json:"pipeline"`
	Serve    ServeConfig     `json:"serve"`
}

type ServeConfig struct {
	Addr string `json:"addr"`
	// sqlite file for captured play records
	DbPath string `json:"db_path"`
	// finalized pipeline artifacts the endpoint serves from
	SongDbPath   string `json:"songdb_path"`
	CategoryPath string `json:"category_path"`
	// version category label whose songs count toward the new frame
	CurrentVersion string `json:"current_version"`
}

var configPath *string

var rootCmd = &cobra.Command{
	Use:   "chunidata",
	Short: "chunidata maintains the chunithm song database and serves player ratings.",
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "chunidata.json5", "Path to the config file.")
}

func readConfig() (Config, error) {
	return configutil.ReadConfig[Config](*configPath)
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
