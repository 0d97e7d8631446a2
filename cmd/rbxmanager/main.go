package main

import "github.com/rbxpi/rbxmanager/cmd/rbxmanager/cmd"

func main() {
	cmd.Execute()
}
