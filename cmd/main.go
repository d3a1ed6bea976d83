package main

import "github.com/MohammedAshfaquem/smatdine-backend/cmd/commands"

func main() {
	commands.Execute()
}
