/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/mkaranov/taskdeck/cmd"

func main() {
	cmd.Execute()
}
