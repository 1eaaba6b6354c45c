package main

import "github.com/Tiliavir/worklog-report/cmd"

func main() {
	cmd.Execute()
}
