package main

import (
	"github.com/chasedut/docchat/internal/cmd"
)

func main() {
	cmd.Execute()
}
