package main

import "github.com/verdantlabs/walletgate/cmd/walletgate/cmd"

func main() {
	cmd.Execute()
}
