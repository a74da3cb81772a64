package main

import "github.com/mj1618/keyword-server/cmd"

func main() {
	cmd.Execute()
}
