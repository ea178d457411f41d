package main

import (
	"MixFM/cmd"
)

func main() {
	cmd.Execute()
}
