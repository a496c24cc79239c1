package main

import "github.com/EricSchles/pfas-cancer-project/cmd"

func main() {
	cmd.Execute()
}
