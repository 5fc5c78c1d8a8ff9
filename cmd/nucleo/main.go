package main

import "github.com/razonbilstro/nucleo/internal/cli"

func main() {
	cli.Execute()
}
