package main

import "vid2mp3/cmd"

func main() {
	cmd.Execute()
}
