package main

import "github.com/datefujinari/giftytask/cmd/gt/root"

func main() {
	root.Execute()
}
