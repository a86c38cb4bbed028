package main

import "scenescout/cmd"

func main() {
	cmd.Execute()
}
