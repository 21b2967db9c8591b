//go:build ignore

package main

import (
	"fmt"

	"github.com/parleychat/parley/internal/clipboard"
)

func main() {
	fmt.Println("Testing clipboard round trip...")
	if !clipboard.Available() {
		fmt.Println("No system clipboard")
		return
	}
	if err := clipboard.WriteText("parley clipboard check"); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	text, err := clipboard.ReadText()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Read back %d bytes: %q\n", len(text), text)
}
