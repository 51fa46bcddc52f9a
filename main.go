package main

import "github.com/wakuvilla/hostmerge/cmd"

func main() {
	cmd.Execute()
}
