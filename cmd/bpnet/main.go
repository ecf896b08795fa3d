package main

import "github.com/AndreaMariani-AM/bpnet-lite-custom/cmd/bpnet/cmd"

func main() {
	cmd.Run()
}
