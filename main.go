package main

import (
	"github.com/jjtimmons/conseq/cmd"
)

func main() {
	cmd.Execute()
}
