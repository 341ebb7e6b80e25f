//go:build !darwin

package main

import "fmt"

func probeMetal(string) {
	fmt.Println("\ngo-metal import check skipped: Metal is only available on macOS")
}
