package main

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/starkandwayne/passlite/derive"
	"golang.org/x/crypto/ssh/terminal"
)

// held are the buffers to zero if we are interrupted mid-derivation.
var held struct {
	sync.Mutex
	secrets [][]byte
}

func hold(b []byte) {
	held.Lock()
	held.secrets = append(held.secrets, b)
	held.Unlock()
}

func wipeHeld() {
	held.Lock()
	defer held.Unlock()
	for _, b := range held.secrets {
		derive.Zero(b)
	}
	held.secrets = nil
}

func Signals() {
	prev, err := terminal.GetState(int(os.Stdin.Fd()))
	if err != nil {
		prev = nil
	}

	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	for range s {
		wipeHeld()
		if prev != nil {
			terminal.Restore(int(os.Stdin.Fd()), prev)
		}
		os.Exit(130)
	}
}
