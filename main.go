/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hq2318768188/FFEngine/engine"
	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/testbed"
)

func main() {
	configPath := flag.String("config", "", "toml or yaml application config")
	frames := flag.Uint64("frames", 0, "stop after this many frames, 0 runs until interrupted")
	flag.Parse()

	var config *engine.ApplicationConfig
	if *configPath != "" {
		c, err := engine.LoadApplicationConfig(*configPath)
		if err != nil {
			core.LogFatal("failed to load config: %s", err)
		}
		config = c
	}

	tb := testbed.NewTestGame(config)
	if *frames > 0 {
		tb.ApplicationConfig.MaxFrames = *frames
	}

	e, err := engine.New(tb.Game, nil)
	if err != nil {
		panic(err)
	}

	if err := e.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		_ = e.Shutdown()
	}()

	// run engine
	if err := e.Run(); err != nil {
		panic(err)
	}
}
