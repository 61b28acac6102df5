package main

import "github.com/dkazarin/molva/cmd"

func main() {
	cmd.Execute()
}
