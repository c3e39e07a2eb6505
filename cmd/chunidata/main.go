package main

import (
	"context"

	"chunidata-backend/cmd/chunidata/commands"
	"chunidata-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "chunidata")
	telemetry.InitSlog(false)
	commands.ExecuteContext(context.Background())
}
