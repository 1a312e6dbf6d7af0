// Copyright © 2018 One Concern

package main

import (
	"github.com/oneconcern/p4oo/cmd/p4oo/cmd"
)

func main() {
	cmd.Execute()
}
