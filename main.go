package main

import "staff-sync/cmd"

func main() {
	cmd.Execute()
}
