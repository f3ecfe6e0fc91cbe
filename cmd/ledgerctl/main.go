package main

import "github.com/omnitrip-budget-ledger/internal/ledgerctl"

func main() {
	ledgerctl.Execute()
}
