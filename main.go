package main

import "github.com/killallgit/castsync/cmd"

func main() {
	cmd.Execute()
}
