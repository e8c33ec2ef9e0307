package main

import "github.com/vgmello/momentum-go/cmd/momentum-cli/cmd"

func main() {
	cmd.Execute()
}
