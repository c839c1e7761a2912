package utils

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// ListenForProcessInterruptOrKill blocks until it receives an interrupt (Ctrl+C)
// or termination signal (SIGTERM), then returns it. This is typically used to
// keep a program running until the user requests shutdown.
func ListenForProcessInterruptOrKill() os.Signal {
	// Listen for Ctrl+C or kill
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	fmt.Println("press Ctrl+C to exit")

	return <-sigChan // block until signal arrives
}
