package main

import "github.com/robert-malhotra/go-grib/cmd/gribdump/cmd"

func main() {
	cmd.Execute()
}
