package main

import "pms-sync/cmd"

func main() {
	cmd.Execute()
}
