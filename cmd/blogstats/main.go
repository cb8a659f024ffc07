package main

import "blogstats/cmd/blogstats/commands"

func main() {
	commands.Execute()
}
