package main

import "injuryshield/cmd"

func main() {
	cmd.Execute()
}
