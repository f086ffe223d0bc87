package main

import "github.com/jackchuka/rootscan/cmd"

func main() {
	cmd.Execute()
}
