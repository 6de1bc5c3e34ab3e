package main

import "github.com/theirongolddev/meetcost/cmd"

func main() {
	cmd.Execute()
}
