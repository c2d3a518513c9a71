package main

import "github.com/theirongolddev/pacer/cmd"

func main() {
	cmd.Execute()
}
