package main

import "github.com/katasec/dstream-transformer/internal/cli"

func main() {
	cli.Execute()
}
