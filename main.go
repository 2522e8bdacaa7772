/*
This is an example of application that will use the
engine package to render the grinding wheel scene
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/grindsim/engine"
	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/testbed"
)

func main() {
	configPath := flag.String("config", "assets/engine.toml", "engine configuration file (TOML or YAML)")
	flag.Parse()

	tb := testbed.NewTestGame(*configPath)

	e, err := engine.New(tb.Game)
	if err != nil {
		panic(err)
	}

	if err := e.Initialize(); err != nil {
		core.LogError("failed to initialize: %s", err)
		_ = e.Shutdown()
		os.Exit(1)
	}

	// stop the run loop on sigterm and friends
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	runErr := e.Run(ctx)
	if runErr != nil {
		core.LogError("run loop failed: %s", runErr)
	}
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
		os.Exit(1)
	}
	if runErr != nil {
		os.Exit(1)
	}
}
