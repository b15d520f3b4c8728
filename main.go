package main

import "github.com/hydroponica/ecdash/cmd"

func main() {
	cmd.Execute()
}
