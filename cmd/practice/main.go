package main

import (
	"fmt"
	"os"

	"github.com/citrusvanilla/speed-jong/internal/tui"
)

func main() {
	if err := tui.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
