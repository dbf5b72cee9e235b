// minirsa by David Vogels
//
// This is the main package that initializes the command line interface.
// Run 'minirsa help' for an overview of the available commands.
package main

import "github.com/wokdav/minirsa/cli"

func main() {
	cli.Execute()
}
