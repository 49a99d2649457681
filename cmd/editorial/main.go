package main

import "publishingCore/cmd/editorial/commands"

func main() {
	commands.Execute()
}
