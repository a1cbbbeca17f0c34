/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/tracebus/canlog/cmd/canlog/cmd"
)

func main() {
	cmd.Execute()
}
