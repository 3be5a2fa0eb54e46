package main

import "github.com/OpenTraceLab/OpenTraceFlow/cmd/otf/cmd"

func main() {
	cmd.Execute()
}
