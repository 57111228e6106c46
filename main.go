package main

import "github.com/khrees2412/jobseeker/cmd"

func main() {
	cmd.Execute()
}
