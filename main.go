package main

import (
	_ "time/tzdata"

	"github.com/lelborn/lelborn/cmd"
)

func main() {
	cmd.Execute()
}
