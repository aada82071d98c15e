package main

import "github.com/factorycraft/factory-economy/internal/adapters/cli"

func main() {
	cli.Execute()
}
