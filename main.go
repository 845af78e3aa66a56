package main

import "github.com/learnstack/pagegen/cmd"

func main() {
	cmd.Execute()
}
