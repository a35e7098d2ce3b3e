package main

import "github.com/viralscope/viralscope/cmd"

func main() {
	cmd.Execute()
}
