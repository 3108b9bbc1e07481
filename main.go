/*
Copyright © 2024 Dean
*/
package main

import "ragchat/cmd"

func main() {
	cmd.Execute()
}
