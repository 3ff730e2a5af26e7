package main

import "ticket-reconciler/cmd"

func main() {
	cmd.Execute()
}
