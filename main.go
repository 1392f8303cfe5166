package main

import (
	"github.com/biocode-hms/equipment-management/cmd"
)

func main() {
	cmd.Execute()
}
