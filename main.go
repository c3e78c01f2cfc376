/*
This is an example of application that uses the engine
package to load mesh assets through the resource pipeline
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/blokengine/blok/testbed"
)

func main() {
	demo, err := testbed.NewDemo("config.toml")
	if err != nil {
		panic(err)
	}

	if err := demo.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// stop the run loop on sigterm and other system calls
	go func() {
		<-sigCh
		demo.Stop()
	}()

	if err := demo.Run(); err != nil {
		panic(err)
	}

	if err := demo.Shutdown(); err != nil {
		panic(err)
	}
}
