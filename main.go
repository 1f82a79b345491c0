// Package main is the entry point of the rbxservers binary.
package main

import "github.com/rbxservers/rbxservers-bot/internal/cli"

func main() {
	cli.Execute()
}
