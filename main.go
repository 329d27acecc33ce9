package main

import "example.com/brickworks/services/production/cmd"

func main() {
	cmd.Execute()
}
