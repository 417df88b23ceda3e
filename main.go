package main

import "github.com/refdiff/refdiff/cmd"

func main() {
	cmd.Execute()
}
