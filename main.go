package main

import "github.com/cesta-app/cesta/cmd"

func main() {
	cmd.Execute()
}
