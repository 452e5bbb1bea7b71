package main

import "github.com/tfields/gatehouse/cmd/gatehouse/cmd"

func main() {
	cmd.Execute()
}
