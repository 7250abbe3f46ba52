package main

import "github.com/samsaffron/term-md/cmd"

func main() {
	cmd.Execute()
}
