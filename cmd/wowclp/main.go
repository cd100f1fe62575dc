package main

import (
	"github.com/livp123/wowclp/cmd/wowclp/commands"
)

func main() {
	commands.Execute()
}
