/*
Runner that boots the engine, loads a project and hands control to the
main loop.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/ember/engine"
	"github.com/spaghettifunk/ember/engine/core"
)

func main() {
	projectPath := flag.String("project", "", "path to the project file to load")
	headless := flag.Bool("headless", false, "run without a window")
	play := flag.Bool("play", true, "enter play mode immediately after loading")
	flag.Parse()

	e, err := engine.New(&engine.ApplicationConfig{
		StartPosX:   100,
		StartPosY:   100,
		StartWidth:  1280,
		StartHeight: 720,
		Name:        "Ember Engine",
		LogLevel:    core.InfoLevel,
		Headless:    *headless,
	})
	if err != nil {
		panic(err)
	}

	if err := e.Initialize(); err != nil {
		panic(err)
	}

	if *projectPath != "" {
		if err := e.LoadProject(*projectPath); err != nil {
			panic(err)
		}
		if *play {
			e.EnterPlayMode()
		}
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		e.Close()
	}()

	if err := e.Run(); err != nil {
		panic(err)
	}
}
