package main

import (
	"syncpull/cmd/client/cmd"
)

func main() {
	cmd.Execute()
}
