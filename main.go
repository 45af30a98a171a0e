package main

import "github.com/intprof/intprof/pkg/cmd"

func main() {
	cmd.Execute()
}
