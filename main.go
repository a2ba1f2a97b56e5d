package main

import "meantemp-tools/cmd"

func main() {
	cmd.Execute()
}
