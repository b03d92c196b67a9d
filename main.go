package main

import "github.com/soma-campus/soma-backend/cmd"

func main() {
	cmd.Execute()
}
