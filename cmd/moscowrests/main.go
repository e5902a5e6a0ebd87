package main

import (
	"moscowrests/cmd/moscowrests/cmd"
)

func main() {
	cmd.Execute()
}
