package main

import "github.com/bean-noodles/recon-server/cmd"

func main() {
	cmd.Execute()
}
