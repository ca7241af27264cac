package main

import "github.com/mcoot/userdata-go/internal/cli"

func main() {
	cli.Execute()
}
