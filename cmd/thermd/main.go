package main

import "github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/cli"

func main() {
	cli.Execute()
}
