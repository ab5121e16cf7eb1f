package main

import (
	"github.com/AzielCF/az-laundry/cmd"
)

func main() {
	cmd.Execute()
}
