package main

import "github.com/nguyentantai21042004/media-flow/internal/cli"

func main() {
	cli.Main()
}
