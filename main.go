package main

import "github.com/Dakoina/CalibreBookGrid/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
