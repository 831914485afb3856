package main

import "github.com/ramboll-max/wormhole/cmd"

func main() {
	cmd.Execute()
}
