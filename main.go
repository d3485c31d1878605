package main

import "tokenmap/cmd"

func main() {
	cmd.Execute()
}
